// Package ingest reads OriginalRecord batches from JSON data files and
// locates them on disk the way the rest of this repo locates its own
// config and executable paths.
package ingest

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/ncloudioj/ampidx/internal/logger"
)

// PathResolver locates the data directory containing AMP record JSON files
// and the platform-specific config directory, robust to where the ampidx
// binary itself happens to be running from.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
	log            *log.Logger
}

// NewPathResolver determines the running executable's location and the
// platform's config directory.
func NewPathResolver() (*PathResolver, error) {
	pathLog := logger.New("ingest")

	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}
	execDir := filepath.Dir(execPath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		pathLog.Warnf("could not determine home directory: %v", err)
		homeDir = "/tmp"
	}

	configDir := getConfigDir(homeDir)

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  execDir,
		homeDir:        homeDir,
		configDir:      configDir,
		log:            pathLog,
	}
	pr.log.Debugf("PathResolver initialized: exec=%s, execDir=%s, configDir=%s",
		execPath, execDir, configDir)
	return pr, nil
}

func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", "ampidx")
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "ampidx")
		}
		return filepath.Join(homeDir, ".config", "ampidx")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "ampidx")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "ampidx")
	default:
		return filepath.Join(homeDir, ".ampidx")
	}
}

// GetDataDir resolves the directory containing *.json record files, trying
// in order: an absolute user-specified path, a path relative to the
// executable, a path relative to the working directory, then a handful of
// common sibling locations.
func (pr *PathResolver) GetDataDir(userSpecifiedPath string) (string, error) {
	var candidatePaths []string

	if filepath.IsAbs(userSpecifiedPath) {
		candidatePaths = append(candidatePaths, userSpecifiedPath)
	}

	execRelativePath := filepath.Join(pr.executableDir, userSpecifiedPath)
	candidatePaths = append(candidatePaths, execRelativePath)

	if cwd, err := os.Getwd(); err == nil {
		candidatePaths = append(candidatePaths, filepath.Join(cwd, userSpecifiedPath))
	}

	candidatePaths = append(candidatePaths,
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(filepath.Dir(pr.executableDir), "data"),
		filepath.Join(pr.configDir, "data"),
	)

	for _, path := range candidatePaths {
		if pr.isValidDataDir(path) {
			pr.log.Debugf("found valid data directory: %s", path)
			return path, nil
		}
		pr.log.Debugf("data directory candidate not valid: %s", path)
	}

	return execRelativePath, nil
}

// isValidDataDir reports whether path exists and contains at least one
// *.json record file.
func (pr *PathResolver) isValidDataDir(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(path, "*.json"))
	if err != nil {
		return false
	}
	return len(matches) > 0
}

// GetConfigPath resolves a full path for a config file, preferring the
// platform config directory and falling back to a writable location.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	configPath := filepath.Join(pr.configDir, filename)
	if pr.ensureConfigDir(pr.configDir) {
		return configPath, nil
	}

	fallbackDirs := []string{
		filepath.Join(pr.homeDir, ".ampidx"),
		filepath.Join(os.TempDir(), "ampidx"),
		pr.executableDir,
	}
	for _, dir := range fallbackDirs {
		if pr.ensureConfigDir(dir) {
			path := filepath.Join(dir, filename)
			pr.log.Warnf("using fallback config location: %s", path)
			return path, nil
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	pr.log.Warnf("using temporary config file: %s", tempPath)
	return tempPath, nil
}

func (pr *PathResolver) ensureConfigDir(dir string) bool {
	if err := os.MkdirAll(dir, 0755); err != nil {
		pr.log.Debugf("cannot create config directory %s: %v", dir, err)
		return false
	}
	testFile := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		pr.log.Debugf("config directory %s is not writable: %v", dir, err)
		return false
	}
	os.Remove(testFile)
	return true
}

// GetExecutableDir returns the directory containing the executable.
func (pr *PathResolver) GetExecutableDir() string { return pr.executableDir }

// GetConfigDir returns the platform config directory.
func (pr *PathResolver) GetConfigDir() string { return pr.configDir }

// ResolveRelativePath resolves a path relative to the executable directory,
// passing absolute paths through unchanged.
func (pr *PathResolver) ResolveRelativePath(relativePath string) string {
	if filepath.IsAbs(relativePath) {
		return relativePath
	}
	return filepath.Join(pr.executableDir, relativePath)
}

// DiagnosePathIssues reports runtime path information, the resolved data
// directory and whether it is valid, and the resolved config path.
func (pr *PathResolver) DiagnosePathIssues(userDataPath string) map[string]any {
	diag := make(map[string]any)

	cwd, _ := os.Getwd()
	diag["runtime_info"] = map[string]string{
		"executable_path": pr.executablePath,
		"executable_dir":  pr.executableDir,
		"current_dir":     cwd,
		"config_dir":      pr.configDir,
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
	}

	dataDir, err := pr.GetDataDir(userDataPath)
	diag["data_dir_resolution"] = map[string]any{
		"requested_path": userDataPath,
		"resolved_path":  dataDir,
		"error":          err,
		"is_valid":       pr.isValidDataDir(dataDir),
	}

	configPath, err := pr.GetConfigPath("ampidx.toml")
	diag["config_path_resolution"] = map[string]any{
		"resolved_path": configPath,
		"error":         err,
	}

	return diag
}
