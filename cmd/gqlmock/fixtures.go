package main

import (
	"encoding/json"
	"os"
	"sort"

	pkgerrors "github.com/pkg/errors"

	"github.com/mycelian/gqltest/mock"
)

// readFixtures decodes a JSON object keyed by operation name.
func readFixtures(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "read fixtures")
	}
	var fixtures map[string]any
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, pkgerrors.Wrapf(err, "parse fixtures %s", path)
	}
	return fixtures, nil
}

// loadFixtures builds the resolver. An empty path yields a mock with no
// rules, so every operation reports that no mocks were set.
func loadFixtures(path string) (*mock.Mock, error) {
	if path == "" {
		return mock.New(mock.Config{}), nil
	}
	fixtures, err := readFixtures(path)
	if err != nil {
		return nil, err
	}
	return mock.FromMap(fixtures)
}

func fixtureNames(path string) ([]string, error) {
	fixtures, err := readFixtures(path)
	if err != nil {
		return nil, err
	}
	if _, err := mock.FromMap(fixtures); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(fixtures))
	for name := range fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
