// Package personalization turns a learner profile into the context sent with each question.
package personalization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/store"
)

// Outcome tells how a context was obtained.
type Outcome int

const (
	// Found means a profile was read and summarised.
	Found Outcome = iota
	// NoProfile means the user has no profile; the context is empty.
	NoProfile
	// LookupFailed means the profile could not be read; the context is empty.
	LookupFailed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NoProfile:
		return "no_profile"
	case LookupFailed:
		return "lookup_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the personalization context together with how it was obtained.
type Result struct {
	Context model.PersonalizationContext
	Outcome Outcome
	Err     error
}

// ProfileSource reads learner profiles. It returns store.ErrNotFound when none exists.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error)
}

// Provider builds personalization contexts.
type Provider struct {
	source ProfileSource
	cache  *cache.Cache
}

// NewProvider creates a provider. Profiles are cached for ttl; zero disables caching.
func NewProvider(source ProfileSource, ttl time.Duration) *Provider {
	p := &Provider{source: source}
	if ttl > 0 {
		p.cache = cache.New(ttl, 2*ttl)
	}
	return p
}

// BuildContext never fails; lookup problems are reported through the result outcome.
func (p *Provider) BuildContext(ctx context.Context, userID int64) Result {
	key := cacheKey(userID)
	if p.cache != nil {
		if x, found := p.cache.Get(key); found {
			return Result{Context: x.(model.PersonalizationContext), Outcome: Found}
		}
	}

	profile, err := p.source.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && profile == nil) {
		return Result{Outcome: NoProfile}
	}
	if err != nil {
		return Result{Outcome: LookupFailed, Err: err}
	}

	pc := Summarize(profile)
	if p.cache != nil {
		p.cache.Set(key, pc, cache.DefaultExpiration)
	}
	return Result{Context: pc, Outcome: Found}
}

// Invalidate drops any cached context for userID.
func (p *Provider) Invalidate(userID int64) {
	if p.cache != nil {
		p.cache.Delete(cacheKey(userID))
	}
}

// Summarize joins the list-shaped profile fields with ", ".
func Summarize(profile *model.UserProfile) model.PersonalizationContext {
	if profile == nil {
		return model.PersonalizationContext{}
	}
	return model.PersonalizationContext{
		LearningGoals:    joinList(profile.LearningGoals),
		InterestedTopics: joinList(profile.InterestedTopics),
	}
}

// joinList renders a list value; anything that is not a list yields "".
func joinList(v any) string {
	var items []string
	switch list := v.(type) {
	case []string:
		items = list
	case []any:
		items = make([]string, 0, len(list))
		for _, item := range list {
			items = append(items, fmt.Sprint(item))
		}
	default:
		return ""
	}
	return strings.Join(items, ", ")
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("profile:%d", userID)
}
