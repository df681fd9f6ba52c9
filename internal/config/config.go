package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pders01/checkpoint/internal/git"
	"github.com/pders01/checkpoint/internal/snapshot"
)

// Keys of the global configuration
const (
	KeyGitPath         = "git.path"
	KeyGitCandidates   = "git.candidates"
	KeyStartTimeout    = "git.start_timeout"
	KeyFinishTimeout   = "git.finish_timeout"
	KeyDefaultBranch   = "repository.default_branch"
	KeyIdentityName    = "identity.name"
	KeyIdentityEmail   = "identity.email"
	KeyHistoryLimit    = "history.limit"
	KeyLogVerbose      = "log.verbose"
	KeyLogFormat       = "log.format"
	KeyAutosaveDelay   = "autosave.debounce"
	KeyAutosaveCronJob = "autosave.schedule"
)

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	opts := git.DefaultOptions()
	v.SetDefault(KeyGitPath, "")
	v.SetDefault(KeyGitCandidates, git.DefaultCandidates)
	v.SetDefault(KeyStartTimeout, opts.StartTimeout)
	v.SetDefault(KeyFinishTimeout, opts.FinishTimeout)
	v.SetDefault(KeyDefaultBranch, opts.DefaultBranch)
	v.SetDefault(KeyIdentityName, opts.AuthorName)
	v.SetDefault(KeyIdentityEmail, opts.AuthorEmail)
	v.SetDefault(KeyHistoryLimit, snapshot.DefaultHistoryLimit)
	v.SetDefault(KeyLogVerbose, false)
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyAutosaveDelay, 30*time.Second)
	v.SetDefault(KeyAutosaveCronJob, "")
}

// GitPath returns the configured backend executable, empty to search for one
func GitPath() string {
	return viper.GetString(KeyGitPath)
}

// GitCandidates returns the fallback install locations searched after PATH
func GitCandidates() []string {
	return viper.GetStringSlice(KeyGitCandidates)
}

// BackendOptions assembles the options of the git backend
func BackendOptions() git.Options {
	return git.Options{
		DefaultBranch: viper.GetString(KeyDefaultBranch),
		AuthorName:    viper.GetString(KeyIdentityName),
		AuthorEmail:   viper.GetString(KeyIdentityEmail),
		StartTimeout:  viper.GetDuration(KeyStartTimeout),
		FinishTimeout: viper.GetDuration(KeyFinishTimeout),
	}
}

// HistoryLimit returns how many snapshots a listing asks for
func HistoryLimit() int {
	if n := viper.GetInt(KeyHistoryLimit); n > 0 {
		return n
	}
	return snapshot.DefaultHistoryLimit
}

func LogVerbose() bool {
	return viper.GetBool(KeyLogVerbose)
}

func LogFormat() string {
	return viper.GetString(KeyLogFormat)
}

// AutosaveDebounce returns the quiet period after the last file change
// before an autosave is attempted
func AutosaveDebounce() time.Duration {
	return viper.GetDuration(KeyAutosaveDelay)
}

// AutosaveSchedule returns the cron expression for periodic autosaves
func AutosaveSchedule() string {
	return viper.GetString(KeyAutosaveCronJob)
}
