package stop

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

var ErrInvalidAlias = errors.New("alias and canonical name are required")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=stop
type Repository interface {
	// FindCanonical returns the canonical name of the longest alias whose
	// words appear consecutively in key, or "" when none matches. Both key
	// and the stored aliases are in Key form.
	FindCanonical(ctx context.Context, key string) (string, error)
	CreateAlias(ctx context.Context, alias, canonical string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Canonical maps a raw stop label to its learned canonical name. Unknown
// labels come back trimmed but otherwise unchanged.
func (s *Service) Canonical(ctx context.Context, label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", nil
	}

	key := Key(label)
	if key == "" {
		return label, nil
	}

	canonical, err := s.repo.FindCanonical(ctx, key)
	if err != nil {
		return "", err
	}

	if canonical == "" {
		return label, nil
	}

	return canonical, nil
}

// Learn remembers that alias refers to canonical.
func (s *Service) Learn(ctx context.Context, alias, canonical string) error {
	key := Key(alias)
	canonical = strings.TrimSpace(canonical)

	if key == "" || canonical == "" {
		return ErrInvalidAlias
	}

	return s.repo.CreateAlias(ctx, key, canonical)
}

// Key folds a stop label to lower-case words separated by single spaces.
// Punctuation separates words, so "CTG-Dampara" and "ctg dampara" share a key.
func Key(label string) string {
	words := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	return strings.Join(words, " ")
}

// CanonicalizeTrips rewrites every origin and destination in params in place.
func (s *Service) CanonicalizeTrips(ctx context.Context, params []trip.CreateParams) error {
	seen := make(map[string]string)

	resolve := func(label string) (string, error) {
		if c, ok := seen[label]; ok {
			return c, nil
		}

		c, err := s.Canonical(ctx, label)
		if err != nil {
			return "", err
		}

		seen[label] = c

		return c, nil
	}

	for i := range params {
		for j := range params[i].Segments {
			seg := &params[i].Segments[j]

			origin, err := resolve(seg.Origin)
			if err != nil {
				return err
			}

			destination, err := resolve(seg.Destination)
			if err != nil {
				return err
			}

			seg.Origin, seg.Destination = origin, destination
		}
	}

	return nil
}
