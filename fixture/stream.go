package fixture

import (
	"context"
	"fmt"
	"path"

	"github.com/kbukum/fixturekit/errors"
)

// Stream iterates a spec's records lazily. Every pass re-opens and
// re-decodes the files, so iteration order is stable across passes and
// file edits between passes are picked up.
type Stream struct {
	spec *Spec
}

// Stream returns a restartable object stream over the spec's files.
func (s *Spec) Stream() *Stream { return &Stream{spec: s} }

// ForEach decodes records file by file in declaration order and calls
// fn with each built object. It stops at the first error, from the
// files, the model binding or fn itself.
func (st *Stream) ForEach(ctx context.Context, fn func(*Object) error) error {
	for _, name := range st.spec.files {
		records, err := st.spec.readFile(name)
		if err != nil {
			return err
		}
		for i, rec := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			obj, err := st.spec.buildObject(ctx, rec)
			if err != nil {
				if appErr, ok := errors.AsAppError(err); ok {
					appErr.WithDetail("file", name).WithDetail("record", i)
				}
				return err
			}
			if err := fn(obj); err != nil {
				return err
			}
		}
	}
	return nil
}

// Objects collects the whole stream into memory.
func (st *Stream) Objects(ctx context.Context) ([]*Object, error) {
	var out []*Object
	err := st.ForEach(ctx, func(o *Object) error {
		out = append(out, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// readFile opens and fully decodes one fixture file.
func (s *Spec) readFile(name string) ([]Record, error) {
	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}

	fsys, err := s.app.DataFS()
	if err != nil {
		return nil, err
	}
	full := name
	if s.dir != "" {
		full = path.Join(s.dir, name)
	}
	f, err := fsys.Open(full)
	if err != nil {
		return nil, errors.Newf(errors.ErrCodeFixtureUnreadable,
			"open fixture %q of app %q", full, s.app.Label).WithCause(err)
	}
	defer f.Close()

	records, err := format.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFixtureSyntax,
			fmt.Sprintf("decode fixture %q of app %q", full, s.app.Label), err)
	}
	return records, nil
}
