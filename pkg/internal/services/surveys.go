package services

import (
	"context"
	"fmt"
	"time"

	localCache "git.solsynth.dev/hypernet/survey/pkg/internal/cache"
	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

const surveyListingCacheKey = "survey-listing"

type surveyListing struct {
	Surveys []models.Survey
}

func surveyListingTTL() time.Duration {
	if ttl := viper.GetDuration("cache.survey_listing_ttl"); ttl > 0 {
		return ttl
	}
	return 5 * time.Minute
}

func loadSurveys(tx *gorm.DB) ([]models.Survey, error) {
	var surveys []models.Survey
	if err := tx.Preload("Scenarios", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).Order("id ASC").Find(&surveys).Error; err != nil {
		return surveys, fmt.Errorf("unable to list surveys: %v", err)
	}
	return surveys, nil
}

// ListSurveys returns every survey with its scenarios, served from the
// local cache when the store is ready.
func ListSurveys(tx *gorm.DB) ([]models.Survey, error) {
	if localCache.S == nil {
		return loadSurveys(tx)
	}

	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	ctx := context.Background()

	if cached, err := marshal.Get(ctx, surveyListingCacheKey, new(surveyListing)); err == nil {
		return cached.(*surveyListing).Surveys, nil
	}

	surveys, err := loadSurveys(tx)
	if err != nil {
		return surveys, err
	}

	_ = marshal.Set(
		ctx,
		surveyListingCacheKey,
		surveyListing{Surveys: surveys},
		store.WithExpiration(surveyListingTTL()),
		store.WithTags([]string{"surveys"}),
		store.WithSynchronousSet(),
	)

	return surveys, nil
}

// InvalidateSurveyListing drops the cached listing after definitions change.
func InvalidateSurveyListing() {
	if localCache.S == nil {
		return
	}
	ctx := context.Background()
	cacheManager := cache.New[any](localCache.S)
	// Tag keys are written asynchronously, drop the listing key itself too.
	if err := cacheManager.Delete(ctx, surveyListingCacheKey); err != nil {
		log.Warn().Err(err).Msg("Unable to drop survey listing...")
	}
	if err := cacheManager.Invalidate(ctx, store.WithInvalidateTags([]string{"surveys"})); err != nil {
		log.Warn().Err(err).Msg("Unable to invalidate survey listing...")
	}
}

// ListActiveSurveys keeps the surveys open at the given time that the
// account may answer.
func ListActiveSurveys(tx *gorm.DB, groups []uint, now time.Time) ([]models.Survey, error) {
	surveys, err := ListSurveys(tx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(surveys, func(item models.Survey, _ int) bool {
		return item.IsActiveAt(now) && EnsureSurveyAccess(item, groups) == nil
	}), nil
}

type ResponseSummary struct {
	models.SurveyResponse
	Completed bool `json:"completed"`
}

type SurveySummary struct {
	models.Survey
	Active    bool              `json:"active"`
	Responses []ResponseSummary `json:"responses"`
}

// ListAccountSurveys lists the surveys an account can see along with its
// responses and whether each one is complete.
func ListAccountSurveys(tx *gorm.DB, account uint, groups []uint, now time.Time) ([]SurveySummary, error) {
	surveys, err := ListSurveys(tx)
	if err != nil {
		return nil, err
	}
	surveys = lo.Filter(surveys, func(item models.Survey, _ int) bool {
		return EnsureSurveyAccess(item, groups) == nil
	})

	out := make([]SurveySummary, 0, len(surveys))
	for _, survey := range surveys {
		responses, err := ListResponses(tx, survey.ID, account)
		if err != nil {
			return nil, err
		}
		summary := SurveySummary{Survey: survey, Active: survey.IsActiveAt(now)}
		for _, response := range responses {
			response.Survey = survey
			completed, err := IsResponseCompleted(tx, response)
			if err != nil {
				return nil, err
			}
			summary.Responses = append(summary.Responses, ResponseSummary{SurveyResponse: response, Completed: completed})
		}
		out = append(out, summary)
	}

	return out, nil
}
