// Package chef turns fridge photos and ingredient lists into recipes using
// the generative model, and keeps the per-user history, favorites and streak.
package chef

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/fridgechef/internal/core/domain"
	"github.com/vietddude/fridgechef/internal/genai"
	"github.com/vietddude/fridgechef/internal/infra/storage"
	"github.com/vietddude/fridgechef/internal/metrics"
)

var (
	ErrEmptyImage        = errors.New("chef: image is empty")
	ErrUnsupportedImage  = errors.New("chef: unsupported image type")
	ErrNoIngredients     = errors.New("chef: no ingredients given")
	ErrEmptyInstruction  = errors.New("chef: adaptation instruction is empty")
	ErrInvalidRecipe     = errors.New("chef: recipe needs a title, ingredients and steps")
	ErrQuotaExceeded     = errors.New("chef: daily generation quota exceeded")
	ErrMissingUser       = errors.New("chef: user id is required")
	ErrNoRecipesProduced = errors.New("chef: model returned no usable recipes")
)

// DefaultRecipeCount is how many recipes GenerateRecipes asks for.
const DefaultRecipeCount = 3

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// Generator produces model text for a request.
type Generator interface {
	Generate(ctx context.Context, req genai.Request) (genai.Outcome, error)
}

// RecipeCache stores generated recipe lists.
type RecipeCache interface {
	Get(ctx context.Context, key string) ([]domain.Recipe, bool, error)
	Set(ctx context.Context, key string, recipes []domain.Recipe) error
}

// Limiter decides whether a user may spend another model call.
type Limiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// Refunder is implemented by limiters that can give a unit back.
type Refunder interface {
	Refund(ctx context.Context, userID string) error
}

// Deps wires a Service.
type Deps struct {
	Generator Generator
	Cache     RecipeCache
	Quota     Limiter
	Store     storage.Store
	Logger    *slog.Logger
	Now       func() time.Time
}

// Service implements the assistant operations.
type Service struct {
	gen     Generator
	cache   RecipeCache
	quota   Limiter
	store   storage.Store
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
	recipes int
}

func NewService(d Deps) *Service {
	s := &Service{
		gen:     d.Generator,
		cache:   d.Cache,
		quota:   d.Quota,
		store:   d.Store,
		log:     d.Logger,
		now:     d.Now,
		newID:   uuid.NewString,
		recipes: DefaultRecipeCount,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// DetectIngredients asks the model which ingredients are visible in a photo.
// An empty mimeType is sniffed from the image bytes.
func (s *Service) DetectIngredients(
	ctx context.Context,
	userID string,
	image []byte,
	mimeType string,
) ([]domain.Ingredient, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	mimeType = strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	if !supportedImageTypes[mimeType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mimeType)
	}

	req := genai.Request{
		SystemInstruction: &genai.Content{Parts: []genai.Part{{Text: systemPrompt}}},
		Contents: []genai.Content{{
			Role: "user",
			Parts: []genai.Part{
				{Text: detectPrompt},
				{InlineData: &genai.InlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
		GenerationConfig: &genai.GenerationConfig{
			Temperature:      0.2,
			ResponseMIMEType: "application/json",
		},
	}

	text, err := s.generate(ctx, userID, "detect", req)
	if err != nil {
		return nil, err
	}
	ingredients, err := parseIngredients(text)
	if err != nil {
		return nil, err
	}
	ingredients = domain.DedupeIngredients(ingredients)

	s.record(ctx, &domain.HistoryEntry{
		UserID:      userID,
		Kind:        domain.HistoryDetect,
		Ingredients: ingredients,
	})
	return ingredients, nil
}

// GenerateRecipes suggests recipes for the given ingredients. Zero prefs
// fall back to the user's stored profile preferences.
func (s *Service) GenerateRecipes(
	ctx context.Context,
	userID string,
	ingredients []domain.Ingredient,
	prefs domain.Preferences,
) ([]domain.Recipe, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	ingredients = domain.DedupeIngredients(ingredients)
	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}
	if prefs.IsZero() {
		prefs = s.storedPreferences(ctx, userID)
	}

	key := cacheKey(ingredients, prefs)
	if recipes, ok := s.cached(ctx, key); ok {
		s.record(ctx, &domain.HistoryEntry{
			UserID:      userID,
			Kind:        domain.HistoryGenerate,
			Ingredients: ingredients,
			Recipes:     recipes,
		})
		return recipes, nil
	}

	req := genai.UserText(recipesPrompt(ingredients, prefs, s.recipes))
	req.SystemInstruction = &genai.Content{Parts: []genai.Part{{Text: systemPrompt}}}
	req.GenerationConfig = &genai.GenerationConfig{
		Temperature:      0.8,
		ResponseMIMEType: "application/json",
	}

	text, err := s.generate(ctx, userID, "generate", req)
	if err != nil {
		return nil, err
	}
	parsed, err := parseRecipes(text)
	if err != nil {
		return nil, err
	}

	recipes := make([]domain.Recipe, 0, len(parsed))
	for _, r := range parsed {
		if !r.Valid() {
			s.log.Debug("Dropping incomplete recipe", "title", r.Title)
			continue
		}
		r.ID = s.newID()
		markInFridge(&r, ingredients)
		recipes = append(recipes, r)
	}
	if len(recipes) == 0 {
		return nil, ErrNoRecipesProduced
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, recipes); err != nil {
			s.log.Warn("Failed to cache recipes", "error", err)
		}
	}

	s.record(ctx, &domain.HistoryEntry{
		UserID:      userID,
		Kind:        domain.HistoryGenerate,
		Ingredients: ingredients,
		Recipes:     recipes,
	})
	return recipes, nil
}

// AdaptRecipe rewrites recipe following a free-form instruction such as
// "make it vegan". The adapted recipe gets a new ID.
func (s *Service) AdaptRecipe(
	ctx context.Context,
	userID string,
	recipe domain.Recipe,
	instruction string,
) (domain.Recipe, error) {
	if userID == "" {
		return domain.Recipe{}, ErrMissingUser
	}
	if strings.TrimSpace(instruction) == "" {
		return domain.Recipe{}, ErrEmptyInstruction
	}
	if !recipe.Valid() {
		return domain.Recipe{}, ErrInvalidRecipe
	}

	src := recipe
	src.ID = ""
	data, err := json.Marshal(src)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("failed to marshal recipe: %w", err)
	}

	req := genai.UserText(adaptPrompt(string(data), instruction, s.storedPreferences(ctx, userID)))
	req.SystemInstruction = &genai.Content{Parts: []genai.Part{{Text: systemPrompt}}}
	req.GenerationConfig = &genai.GenerationConfig{
		Temperature:      0.4,
		ResponseMIMEType: "application/json",
	}

	text, err := s.generate(ctx, userID, "adapt", req)
	if err != nil {
		return domain.Recipe{}, err
	}
	adapted, err := parseRecipe(text)
	if err != nil {
		return domain.Recipe{}, err
	}
	if !adapted.Valid() {
		return domain.Recipe{}, ErrNoRecipesProduced
	}
	adapted.ID = s.newID()

	s.record(ctx, &domain.HistoryEntry{
		UserID:  userID,
		Kind:    domain.HistoryAdapt,
		Recipes: []domain.Recipe{adapted},
	})
	return adapted, nil
}

// generate checks the quota and runs one executor call. The quota unit is
// given back when the call fails for a reason other than a permanent rejection.
func (s *Service) generate(ctx context.Context, userID, op string, req genai.Request) (string, error) {
	charged := false
	if s.quota != nil {
		ok, err := s.quota.Allow(ctx, userID)
		if err != nil {
			// Quota backend failures must not block cooking
			s.log.Warn("Quota check failed", "user", userID, "error", err)
		} else if !ok {
			metrics.QuotaRejectionsTotal.Inc()
			return "", ErrQuotaExceeded
		} else {
			charged = true
		}
	}

	out, err := s.gen.Generate(ctx, req)
	if err != nil {
		s.log.Error("Model call failed",
			"op", op,
			"user", userID,
			"attempts", out.Attempts,
			"error", err,
		)
		if charged && !genai.IsPermanent(err) {
			s.refund(ctx, userID)
		}
		return "", err
	}
	s.log.Debug("Model call succeeded", "op", op, "user", userID, "attempts", out.Attempts)
	return out.Text, nil
}

func (s *Service) refund(ctx context.Context, userID string) {
	r, ok := s.quota.(Refunder)
	if !ok {
		return
	}
	if err := r.Refund(context.WithoutCancel(ctx), userID); err != nil {
		s.log.Warn("Quota refund failed", "user", userID, "error", err)
	}
}

func (s *Service) cached(ctx context.Context, key string) ([]domain.Recipe, bool) {
	if s.cache == nil {
		return nil, false
	}
	recipes, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		s.log.Warn("Recipe cache lookup failed", "error", err)
		return nil, false
	case !ok:
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	default:
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return recipes, true
	}
}

func (s *Service) storedPreferences(ctx context.Context, userID string) domain.Preferences {
	p, err := s.store.Profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("Failed to load profile", "user", userID, "error", err)
		}
		return domain.Preferences{}
	}
	return p.Preferences
}

// record appends a history entry and advances the streak. Failures are logged only.
func (s *Service) record(ctx context.Context, entry *domain.HistoryEntry) {
	now := s.now()
	entry.ID = s.newID()
	entry.CreatedAt = now.UTC()
	if err := s.store.History.Append(ctx, entry); err != nil {
		s.log.Warn("Failed to append history", "user", entry.UserID, "error", err)
	}

	streak, err := s.store.Streaks.Get(ctx, entry.UserID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("Failed to load streak", "user", entry.UserID, "error", err)
			return
		}
		streak = &domain.Streak{UserID: entry.UserID}
	}
	streak.Touch(now)
	if err := s.store.Streaks.Save(ctx, streak); err != nil {
		s.log.Warn("Failed to save streak", "user", entry.UserID, "error", err)
	}
}

// cacheKey hashes the sorted ingredient names and the preferences.
func cacheKey(ingredients []domain.Ingredient, prefs domain.Preferences) string {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, ing.Key())
	}
	sort.Strings(names)

	allergies := append([]string(nil), prefs.Allergies...)
	for i := range allergies {
		allergies[i] = strings.ToLower(strings.TrimSpace(allergies[i]))
	}
	sort.Strings(allergies)
	prefs.Allergies = allergies

	h := sha256.New()
	h.Write([]byte(strings.Join(names, "\n")))
	h.Write([]byte{0})
	p, _ := json.Marshal(prefs)
	h.Write(p)
	return hex.EncodeToString(h.Sum(nil))
}

func markInFridge(r *domain.Recipe, available []domain.Ingredient) {
	for i := range r.Ingredients {
		name := strings.ToLower(r.Ingredients[i].Name)
		for _, ing := range available {
			if key := ing.Key(); key != "" && strings.Contains(name, key) {
				r.Ingredients[i].InFridge = true
				break
			}
		}
	}
}
