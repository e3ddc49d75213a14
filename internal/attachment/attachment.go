package attachment

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// DefaultDir is where hero images are kept, relative to the store root.
const DefaultDir = "Resources/Images"

// Extension is the only accepted image extension.
const Extension = ".png"

var (
	// ErrNotImage is returned when an upload does not carry a .png name.
	ErrNotImage = errors.New("attachment: file is not a png image")
	// ErrNotFound is returned when no image is stored under a name.
	ErrNotFound = errors.New("attachment: image not found")
	// ErrInvalidName is returned for names that would escape the image directory.
	ErrInvalidName = errors.New("attachment: invalid image name")
)

// Store keeps one image per hero name on a filesystem.
type Store struct {
	fs  afero.Fs
	dir string
}

// New creates a store saving under dir on fs. An empty dir uses DefaultDir.
func New(fs afero.Fs, dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{fs: fs, dir: path.Clean(dir)}
}

// NewOS creates a store rooted at root on the local disk.
func NewOS(root, dir string) *Store {
	return New(afero.NewBasePathFs(afero.NewOsFs(), root), dir)
}

// Save writes the upload r under name, replacing any earlier image. filename
// is the client side name and must end in .png, ignoring case. It returns the
// stored path relative to the store root.
func (s *Store) Save(name, filename string, r io.Reader) (string, error) {
	if !strings.EqualFold(path.Ext(filename), Extension) {
		return "", fmt.Errorf("%w: %q", ErrNotImage, filename)
	}
	p, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", s.dir, err)
	}
	if err := afero.WriteReader(s.fs, p, r); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}

// Load returns the image stored under name.
func (s *Store) Load(name string) ([]byte, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// Path returns the location of the image of name.
func (s *Store) Path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return path.Join(s.dir, name+Extension), nil
}
