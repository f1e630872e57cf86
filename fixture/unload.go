package fixture

import (
	"context"
	gerrors "errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/fixturekit/database"
	"github.com/kbukum/fixturekit/errors"
	"github.com/kbukum/fixturekit/logger"
	"github.com/kbukum/fixturekit/migration"
	"github.com/kbukum/fixturekit/observability"
)

// unload is the reverse operation: it deletes each fixture row,
// resolving tables and columns through the historical state captured
// at registration so model changes cannot break rollbacks. Sequences
// are left alone.
func (s *Spec) unload(ctx context.Context, db *gorm.DB, state *migration.State) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanFixtureUnload)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrApp, s.app.Label)
	observability.SetSpanAttribute(ctx, observability.AttrFixture, strings.Join(s.files, ","))

	start := time.Now()
	removed := 0
	skipped := 0

	err := s.Stream().ForEach(ctx, func(obj *Object) error {
		ok, err := s.remove(ctx, db, state, obj)
		if err != nil {
			return err
		}
		if ok {
			removed++
		} else {
			skipped++
		}
		return nil
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}

	s.log.Info("Fixtures unloaded", logger.Fields(
		"app", s.app.Label,
		"files", strings.Join(s.files, ","),
		"removed", removed,
		"skipped", skipped,
		"duration", time.Since(start).String(),
	))
	return nil
}

// remove locates one fixture row through the historical state and
// deletes it. It reports whether a row was deleted; an absent row is
// an error unless the spec skips missing rows.
func (s *Spec) remove(ctx context.Context, db *gorm.DB, state *migration.State, obj *Object) (bool, error) {
	ts, err := state.Model(obj.ModelName())
	if err != nil {
		return false, err
	}

	where, args, err := obj.lookup(ts)
	if err != nil {
		return false, err
	}

	row := map[string]interface{}{}
	err = db.WithContext(ctx).Table(ts.Table).Where(where, args...).Take(&row).Error
	if err != nil {
		if gerrors.Is(err, gorm.ErrRecordNotFound) {
			if s.skipMissing {
				s.log.Debug("Fixture row already absent", logger.Fields(
					"model", obj.Qualified(),
					"filter", where,
				))
				return false, nil
			}
			return false, errors.Newf(errors.ErrCodeFixtureNotFound,
				"no %s row matches %q", obj.Qualified(), where)
		}
		return false, database.FromDatabase(err, obj.Qualified())
	}

	// Delete by the fetched key when the table has one; the filter
	// itself is the fallback for keyless tables.
	if ts.PrimaryKey != "" {
		if pkv, ok := row[ts.PrimaryKey]; ok && !isNil(pkv) {
			where, args = ts.PrimaryKey+" = ?", []interface{}{pkv}
		}
	}
	res := db.WithContext(ctx).Exec("DELETE FROM "+ts.Table+" WHERE "+where, args...)
	if res.Error != nil {
		return false, database.FromDatabase(res.Error, obj.Qualified())
	}
	return true, nil
}

// lookup picks the row filter for one record: the id value when the
// record carries one, else its slug, else every deserialized field.
func (o *Object) lookup(ts migration.TableState) (string, []interface{}, error) {
	if v, ok := o.applied["id"]; ok {
		col := ts.PrimaryKey
		if col == "" {
			c, colOK := ts.Column("id")
			if !colOK {
				return "", nil, errors.Newf(errors.ErrCodeModelNotFound,
					"historical model %s has no id column", o.Qualified())
			}
			col = c
		}
		return whereEq(col, v)
	}
	if v, ok := o.applied["slug"]; ok {
		col, colOK := ts.Column("slug")
		if !colOK {
			return "", nil, errors.Newf(errors.ErrCodeModelNotFound,
				"historical model %s has no slug column", o.Qualified())
		}
		return whereEq(col, v)
	}
	return o.fullMatch(ts)
}

// fullMatch filters on every deserialized field, in sorted column
// order for stable SQL.
func (o *Object) fullMatch(ts migration.TableState) (string, []interface{}, error) {
	if len(o.applied) == 0 {
		return "", nil, errors.Newf(errors.ErrCodeFixtureSyntax,
			"record for %s has no fields to match", o.Qualified())
	}

	names := make([]string, 0, len(o.applied))
	for name := range o.applied {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	var args []interface{}
	for i, name := range names {
		col, ok := ts.Column(name)
		if !ok {
			return "", nil, errors.Newf(errors.ErrCodeModelNotFound,
				"historical model %s has no column for field %q", o.Qualified(), name)
		}
		if i > 0 {
			b.WriteString(" AND ")
		}
		if isNil(o.applied[name]) {
			b.WriteString(col + " IS NULL")
		} else {
			b.WriteString(col + " = ?")
			args = append(args, o.applied[name])
		}
	}
	return b.String(), args, nil
}

func whereEq(col string, v interface{}) (string, []interface{}, error) {
	if isNil(v) {
		return col + " IS NULL", nil, nil
	}
	return col + " = ?", []interface{}{v}, nil
}
