package cmd

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"github.com/pders01/checkpoint/internal/config"
	"github.com/pders01/checkpoint/internal/testutil"
)

func TestMain(m *testing.M) {
	config.SetDefaults(viper.GetViper())
	os.Exit(m.Run())
}

// useProject points the commands at a fresh temp project
func useProject(t *testing.T) *testutil.TempProject {
	t.Helper()
	p := testutil.NewTempProject(t)
	projectDir = p.Path
	t.Cleanup(func() {
		projectDir = ""
		resetFlags()
	})
	return p
}

func resetFlags() {
	initGameID, initGameName = "", ""
	listAuto, listManual, listToday = false, false, false
	listSince, listLimit = "", 0
	listJSON, listToon = false, false
	statsJSON, statsToon = false, false
	diffJSON, diffToon = false, false
	restoreLatest = false
}

// saved creates a snapshot through the save command and returns its revision
func saved(t *testing.T, p *testutil.TempProject, description string) string {
	t.Helper()
	if err := runSave(nil, []string{description}); err != nil {
		t.Fatalf("save command failed: %v", err)
	}
	return p.Head()
}
