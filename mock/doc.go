/*
Package mock provides a scriptable link.Resolver for tests.

Rules are matched by operation name, optionally narrowed by variables or a
predicate. The most recently registered matching rule wins, so a test can
override a shared default for one case:

	m := mock.New(mock.Config{})
	m.On("Pets").ReturnData(map[string]any{"pets": []any{}})
	m.On("Pet").WithVariables(map[string]any{"id": "p1"}).ReturnData(map[string]any{"pet": nil})
	m.On("AdoptPet").ReturnError(errors.New("shelter closed"))
	m.On("Slow").After(20 * time.Millisecond).ReturnData(nil)

When nothing matches, Config.Fallback is consulted. Without a fallback the
operation fails with a *NoMockError naming it. That error travels the same path
as any scripted failure: it rejects the one operation, never its siblings.

Every resolution is recorded and available from Calls.
*/
package mock
