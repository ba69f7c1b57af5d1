package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ArtifactSet is the three final artifacts of one order.
type ArtifactSet struct {
	Markup string
	Script string
	Style  string
}

// Content returns the artifact of the given kind.
func (s ArtifactSet) Content(kind Kind) string {
	switch kind {
	case KindMarkup:
		return s.Markup
	case KindScript:
		return s.Script
	case KindStyle:
		return s.Style
	default:
		return ""
	}
}

// ArtifactFilename is the public basename of one artifact.
func ArtifactFilename(identifier string, kind Kind) string {
	return identifier + "." + kind.Extension()
}

// ArtifactStore publishes an artifact set under its identifier. A failed
// Write must leave any previously published set untouched.
type ArtifactStore interface {
	Write(ctx context.Context, identifier string, set ArtifactSet) error
}

// FileStore publishes artifacts into a statically served directory.
type FileStore struct {
	dir string

	// beforePublish runs after every temp file is written and before the
	// first rename. Tests use it to simulate a crash at that point.
	beforePublish func() error
	// rename publishes one staged file; nil means os.Rename.
	rename func(oldpath, newpath string) error
}

// NewFileStore creates a store that writes into dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the output directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Write stages each artifact under a per-run temporary name in the output
// directory and renames the three into place once all are on disk. Markup
// is renamed last since it references the other two. The previous set is
// hard-linked aside first; if a rename fails, the files already replaced
// are restored so the directory is left as it was.
func (s *FileStore) Write(ctx context.Context, identifier string, set ArtifactSet) (err error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return artifactWriteFailure("could not create output directory", err)
	}

	staged := make(map[Kind]string, len(Kinds))
	previous := make(map[Kind]string, len(Kinds))
	defer func() {
		for _, path := range previous {
			os.Remove(path)
		}
		if err == nil {
			return
		}
		for _, path := range staged {
			os.Remove(path)
		}
	}()

	for _, kind := range Kinds {
		if err := ctx.Err(); err != nil {
			return artifactWriteFailure("write cancelled", err)
		}
		path, err := s.stage(identifier, kind, set.Content(kind))
		if err != nil {
			return artifactWriteFailure(fmt.Sprintf("could not stage %s artifact", kind), err)
		}
		staged[kind] = path
	}

	if s.beforePublish != nil {
		if err := s.beforePublish(); err != nil {
			return artifactWriteFailure("publish aborted", err)
		}
	}

	for _, kind := range Kinds {
		final := filepath.Join(s.dir, ArtifactFilename(identifier, kind))
		backup := staged[kind] + ".prev"
		switch err := os.Link(final, backup); {
		case err == nil:
			previous[kind] = backup
		case !errors.Is(err, fs.ErrNotExist):
			return artifactWriteFailure(fmt.Sprintf("could not keep previous %s artifact", kind), err)
		}
	}

	rename := s.rename
	if rename == nil {
		rename = os.Rename
	}
	var published []Kind
	for _, kind := range Kinds {
		final := filepath.Join(s.dir, ArtifactFilename(identifier, kind))
		if err := rename(staged[kind], final); err != nil {
			s.restore(identifier, published, previous)
			return artifactWriteFailure(fmt.Sprintf("could not publish %s artifact", kind), err)
		}
		delete(staged, kind)
		published = append(published, kind)
	}
	return nil
}

// restore puts back the previous files of the kinds already published, and
// removes the ones that had no previous file.
func (s *FileStore) restore(identifier string, published []Kind, previous map[Kind]string) {
	for _, kind := range published {
		final := filepath.Join(s.dir, ArtifactFilename(identifier, kind))
		if backup, ok := previous[kind]; ok {
			if os.Rename(backup, final) == nil {
				delete(previous, kind)
			}
			continue
		}
		os.Remove(final)
	}
}

func (s *FileStore) stage(identifier string, kind Kind, content string) (path string, err error) {
	f, err := os.CreateTemp(s.dir, "."+identifier+".*."+kind.Extension()+".tmp")
	if err != nil {
		return "", err
	}
	path = f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(path)
		}
	}()

	if _, err = f.WriteString(content); err != nil {
		return "", err
	}
	if err = f.Sync(); err != nil {
		return "", err
	}
	// CreateTemp uses 0600; the static server needs to read the file.
	if err = f.Chmod(0644); err != nil {
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
