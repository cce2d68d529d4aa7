package dataset

import (
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
)

// ErrDataMissing is returned when no candidate directory holds the data files.
var ErrDataMissing = errors.New("dataset: data files not found; generate them first with mnist-ctf")

// Locate returns the first directory in dirs that contains every one of files.
func Locate(dirs []string, files ...string) (string, error) {
    if len(files) == 0 {
        return "", errors.New("locate: no files requested")
    }
    for _, dir := range dirs {
        if hasAll(dir, files) {
            return dir, nil
        }
    }
    return "", fmt.Errorf("%w (looked for %s in %s)", ErrDataMissing,
        strings.Join(files, ", "), strings.Join(dirs, ", "))
}

// Paths joins dir with each file name.
func Paths(dir string, files ...string) []string {
    out := make([]string, len(files))
    for i, f := range files {
        out[i] = filepath.Join(dir, f)
    }
    return out
}

func hasAll(dir string, files []string) bool {
    for _, f := range files {
        info, err := os.Stat(filepath.Join(dir, f))
        if err != nil || info.IsDir() {
            return false
        }
    }
    return true
}
