package dataset

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const cacheDirName = ".ganblr_dataset"

// CacheDir is where downloaded tables are kept. It is created on demand.
func CacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "dataset: home directory")
	}
	dir := filepath.Join(home, cacheDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads url into dir unless a file of the same name is already
// there, and returns the local path.
func Fetch(url, dir string) (string, error) {
	name := path.Base(url)
	if name == "" || name == "/" || name == "." {
		return "", errors.Errorf("dataset: no file name in %s", url)
	}
	local := filepath.Join(dir, name)
	if err := ensureFile(local, url); err != nil {
		return "", err
	}
	return local, nil
}

func ensureFile(local, url string) error {
	if _, err := os.Stat(local); err == nil {
		return nil
	}

	resp, err := http.Get(url)
	if err != nil {
		return errors.Wrapf(err, "dataset: download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("dataset: download %s: bad status %s", url, resp.Status)
	}

	// a partial download must never look cached
	tmp := local + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "dataset: download %s", url)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, local)
}

// LoadURL fetches a CSV into the cache directory and loads it like LoadCSV.
func LoadURL(url, classColumn string) (Table, error) {
	dir, err := CacheDir()
	if err != nil {
		return Table{}, err
	}
	local, err := Fetch(url, dir)
	if err != nil {
		return Table{}, err
	}
	return LoadCSV(local, classColumn)
}
