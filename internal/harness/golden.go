package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden compiles a scenario and compares its snapshot against a
// golden file. The golden file is stored in testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) error {
	t.Helper()

	snap, err := Run(s)
	if err != nil {
		return err
	}
	return AssertGolden(t, s.Name, snap)
}

// AssertGolden compares an already-produced snapshot against the golden
// file stored under name.
func AssertGolden(t *testing.T, name string, snap *Snapshot) error {
	t.Helper()

	data, err := snap.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
