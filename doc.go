/*
Package gqltest lets tests drive GraphQL-style request/response traffic
deterministically.

Application code issues operations through the Controller's client. Instead of
reaching a server, each operation is parked as pending until the test calls
ResolveAll, which hands every pending operation to the mock resolver at once
and waits for all of them. Resolved operations are appended to the
Controller's operation log in the order they actually finished.

	m := mock.New(mock.Config{})
	m.On("Pets").ReturnData(map[string]any{"pets": []any{"Rex"}})

	gql, err := gqltest.New(m)
	if err != nil {
		t.Fatal(err)
	}
	fut := gql.Client().Query(ctx, link.Query("Pets", nil))

	if err := gql.ResolveAll(ctx); err != nil {
		t.Fatal(err)
	}
	res, _ := fut.Wait(ctx)

ResolveAll drains what is pending when its base step runs, exactly once.
Operations started while draining (typically from a link.Future OnComplete
callback) remain pending for the next call. Wrappers registered with Wrap
decorate the drain step; UntilIdle is a ready-made wrapper that repeats it
until nothing is left.

Configuration is read from the environment:

	GQLTEST_DEBUG      debug logging (DEBUG=true works too)
	GQLTEST_LOG_LEVEL  zerolog level name, default "warn"
	GQLTEST_METRICS    prometheus collectors, default true
*/
package gqltest
