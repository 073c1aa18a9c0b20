// Package secrets reads the bot token and the authorized chat list from a
// mounted secrets directory.
package secrets

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File names inside a secrets directory.
const (
	TokenFile     = "TOKEN.secret"
	AuthUsersFile = "AUTH_USERS.secret"
)

// DefaultDirs are probed in order: the container mount, then the working copy.
var DefaultDirs = []string{"/auth/", "./.secrets/"}

// ErrNoDir is returned when none of the candidate directories exists.
var ErrNoDir = errors.New("secrets: no secrets directory found")

// Secrets is the content of one secrets directory. Missing files leave the
// matching field empty.
type Secrets struct {
	Dir       string
	Token     string
	AuthChats []int64
}

// Load reads the first existing directory of dirs (DefaultDirs when empty).
func Load(dirs []string) (*Secrets, error) {
	if len(dirs) == 0 {
		dirs = DefaultDirs
	}
	dir, err := firstDir(dirs)
	if err != nil {
		return nil, err
	}

	s := &Secrets{Dir: dir}
	token, err := os.ReadFile(filepath.Join(dir, TokenFile))
	switch {
	case err == nil:
		s.Token = strings.TrimSpace(string(token))
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("secrets: read %s: %w", TokenFile, err)
	}

	chats, err := readChats(filepath.Join(dir, AuthUsersFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	s.AuthChats = chats
	return s, nil
}

func firstDir(dirs []string) (string, error) {
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrNoDir, strings.Join(dirs, ", "))
}

// readChats parses one chat id per line; blank lines and "#" comments are skipped.
func readChats(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chats []int64
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("secrets: %s line %d: invalid chat id %q", AuthUsersFile, n, line)
		}
		chats = append(chats, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("secrets: read %s: %w", AuthUsersFile, err)
	}
	return chats, nil
}
