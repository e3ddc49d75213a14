package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-heroes/auditlog"
	"github.com/goliatone/go-heroes/hero"
	"github.com/goliatone/go-heroes/internal/attachment"
	"github.com/goliatone/go-heroes/internal/logger"
	"github.com/goliatone/go-heroes/query"
	"github.com/goliatone/go-heroes/repositorycache"
	"github.com/goliatone/go-heroes/uow"
	"go.uber.org/zap"
)

// SessionFactory opens units of work.
type SessionFactory interface {
	Begin(ctx context.Context) (*uow.Session, error)
}

// Images stores hero images by hero name.
type Images interface {
	Save(name, filename string, r io.Reader) (string, error)
	Load(name string) ([]byte, error)
}

// ListQuery holds the raw listing parameters sent by clients.
type ListQuery struct {
	Search     string
	SortBy     string
	PageNumber int
	PageSize   int
}

// Upload is an image sent along with a new hero.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Heroes implements the hero catalog operations.
type Heroes struct {
	sessions SessionFactory
	listing  repositorycache.Lister[hero.Hero]
	images   Images
	limits   query.Limits
}

// Option customizes Heroes.
type Option func(*Heroes)

// WithLimits sets the page size limits of List.
func WithLimits(l query.Limits) Option {
	return func(h *Heroes) {
		h.limits = l
	}
}

// NewHeroes creates the service. listing serves List and is usually the
// cached hero repository; every other read goes through a session.
func NewHeroes(sessions SessionFactory, listing repositorycache.Lister[hero.Hero], images Images, opts ...Option) *Heroes {
	h := &Heroes{
		sessions: sessions,
		listing:  listing,
		images:   images,
		limits:   query.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// List returns one page of heroes. Pages are cut from the cached collection,
// so recent writes may be missing until the cache entry expires.
func (s *Heroes) List(ctx context.Context, q ListQuery) (query.Page[hero.Hero], error) {
	all, err := s.listing.FindAll(ctx)
	if err != nil {
		return query.Page[hero.Hero]{}, fmt.Errorf("list heroes: %w", err)
	}

	return query.Run(all, query.Request{
		Search:     q.Search,
		SortBy:     q.SortBy,
		Pagination: query.NewPagination(q.PageNumber, q.PageSize, s.limits),
	}, hero.Schema())
}

// Get returns the hero with its image bytes, when an image is stored.
func (s *Heroes) Get(ctx context.Context, id int64) (*hero.Hero, error) {
	var found *hero.Hero
	err := s.withSession(ctx, func(sess *uow.Session) error {
		h, err := s.lookup(ctx, sess, id)
		if err != nil {
			return err
		}
		found = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := s.images.Load(found.Name)
	switch {
	case err == nil:
		found.Image = data
	case !noImage(err):
		logger.From(ctx).Warn("load hero image", logger.HeroID(id), logger.Err(err))
	}
	return found, nil
}

// Image returns the stored image of a hero.
func (s *Heroes) Image(ctx context.Context, id int64) ([]byte, error) {
	var name string
	err := s.withSession(ctx, func(sess *uow.Session) error {
		h, err := s.lookup(ctx, sess, id)
		if err != nil {
			return err
		}
		name = h.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := s.images.Load(name)
	if err != nil {
		if noImage(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// noImage reports load errors that mean the hero has no stored image. Names
// that cannot be stored as a file never have one.
func noImage(err error) bool {
	return errors.Is(err, attachment.ErrNotFound) || errors.Is(err, attachment.ErrInvalidName)
}

// Create stores a new hero and its optional image. The id of in is ignored
// and assigned by the store.
func (s *Heroes) Create(ctx context.Context, in *hero.Hero, upload *Upload) (*hero.Hero, error) {
	in.Normalize()
	in.ID = 0
	if err := in.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	err := s.withSession(ctx, func(sess *uow.Session) error {
		exists, err := sess.Heroes().ExistsByName(ctx, in.Name)
		if err != nil {
			return err
		}
		if exists {
			s.fail(ctx, sess, "Create hero {Name} rejected", "Create hero "+in.Name+" rejected", ErrDuplicateKey, map[string]any{"Name": in.Name})
			return ErrDuplicateKey
		}

		if upload != nil {
			path, err := s.images.Save(in.Name, upload.Filename, upload.Body)
			if err != nil {
				s.fail(ctx, sess, "Upload image for {Name} failed", "Upload image for "+in.Name+" failed", err, map[string]any{"Name": in.Name})
				return err
			}
			in.ImageURL = &path
		}

		sess.Heroes().Create(in)
		sess.AuditLog().Record(auditlog.LevelInformation,
			"Created hero {Name}", "Created hero "+in.Name, nil,
			map[string]any{"Name": in.Name},
		)
		sess.CommitAll(ctx)

		if !sess.Heroes().Persisted(in) {
			return ErrNotPersisted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

// Update overwrites the editable fields of the hero with the id of in. The
// stored hero is returned as staged; an unsuccessful commit is only logged.
func (s *Heroes) Update(ctx context.Context, in *hero.Hero) (*hero.Hero, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	var stored *hero.Hero
	err := s.withSession(ctx, func(sess *uow.Session) error {
		h, err := s.lookup(ctx, sess, in.ID)
		if err != nil {
			return err
		}

		if hero.FoldName(h.Name) != hero.FoldName(in.Name) {
			exists, err := sess.Heroes().ExistsByName(ctx, in.Name)
			if err != nil {
				return err
			}
			if exists {
				s.fail(ctx, sess, "Rename hero {HeroId} to {Name} rejected",
					fmt.Sprintf("Rename hero %d to %s rejected", h.ID, in.Name),
					ErrDuplicateKey, map[string]any{"HeroId": h.ID, "Name": in.Name})
				return ErrDuplicateKey
			}
		}

		h.CopyDetails(in)
		sess.Heroes().Update(h)
		sess.AuditLog().Record(auditlog.LevelInformation,
			"Updated hero {HeroId}", fmt.Sprintf("Updated hero %d", h.ID), nil,
			map[string]any{"HeroId": h.ID, "Name": h.Name},
		)
		sess.CommitAll(ctx)
		stored = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Delete removes the hero with id.
func (s *Heroes) Delete(ctx context.Context, id int64) error {
	return s.withSession(ctx, func(sess *uow.Session) error {
		h, err := s.lookup(ctx, sess, id)
		if err != nil {
			return err
		}

		sess.Heroes().Delete(h)
		sess.AuditLog().Record(auditlog.LevelInformation,
			"Deleted hero {HeroId}", fmt.Sprintf("Deleted hero %d", id), nil,
			map[string]any{"HeroId": id, "Name": h.Name},
		)
		sess.CommitAll(ctx)
		return nil
	})
}

// lookup loads a hero through the session and records a miss in the audit log.
func (s *Heroes) lookup(ctx context.Context, sess *uow.Session, id int64) (*hero.Hero, error) {
	h, err := sess.Heroes().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		s.fail(ctx, sess, "Hero {HeroId} not found", fmt.Sprintf("Hero %d not found", id), ErrNotFound, map[string]any{"HeroId": id})
		return nil, ErrNotFound
	}
	return h, nil
}

// fail records a rejected operation and commits it on its own.
func (s *Heroes) fail(ctx context.Context, sess *uow.Session, template, message string, cause error, props map[string]any) {
	logger.From(ctx).Info(message, logger.Session(sess.ID()), zap.NamedError("reason", cause))
	sess.AuditLog().Record(auditlog.LevelWarning, template, message, cause, props)
	sess.CommitAll(ctx)
}

func (s *Heroes) withSession(ctx context.Context, fn func(*uow.Session) error) error {
	sess, err := s.sessions.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.From(ctx).Warn("close session", logger.Session(sess.ID()), logger.Err(cerr))
		}
	}()
	return fn(sess)
}
