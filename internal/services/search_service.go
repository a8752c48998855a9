package services

import (
	"context"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "bizdir/internal/errors"
	"bizdir/internal/geo"
	"bizdir/internal/metrics"
	"bizdir/internal/models"
	"bizdir/internal/pagination"
	"bizdir/internal/search"
)

// Sort strategies accepted by Search.
const (
	SortByRating    = "rating"
	SortByCreatedAt = "createdAt"
)

const (
	// recommendationPool bounds the candidates Search takes from
	// Recommendations before paginating.
	recommendationPool        = 100
	defaultRecommendations    = 10
	preferredRecommendationsN = 3
)

// searchService runs the public search pipeline and the recommendation
// fallback over approved listings.
type searchService struct {
	db *gorm.DB
}

// NewSearchService creates a new SearchServicer.
func NewSearchService(db *gorm.DB) SearchServicer {
	return &searchService{db: db}
}

func validateGeoQuery(q SearchQuery) error {
	if q.Lat != nil && !geo.ValidLatitude(*q.Lat) {
		return apperrors.WithMessage(apperrors.ErrValidation, "latitude must be between -90 and 90")
	}
	if q.Lng != nil && !geo.ValidLongitude(*q.Lng) {
		return apperrors.WithMessage(apperrors.ErrValidation, "longitude must be between -180 and 180")
	}
	if q.RadiusKm != nil && !geo.ValidRadiusKm(*q.RadiusKm) {
		return apperrors.WithMessage(apperrors.ErrValidation, "radius must be between 0.1 and 300 km")
	}
	return nil
}

// wantsRecommendations reports whether an identified caller sent no
// narrowing input at all.
func (q SearchQuery) wantsRecommendations() bool {
	return q.UserID != "" &&
		search.NormalizeKeyword(q.Keyword) == "" &&
		q.Categories == "" &&
		q.Locations == "" &&
		q.BBox == "" &&
		q.Lat == nil && q.Lng == nil
}

func (q SearchQuery) geoCenter() (geo.Point, bool) {
	if q.Lat == nil || q.Lng == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *q.Lat, Lng: *q.Lng}, true
}

// Search filters, ranks and pages approved listings. Range errors on the
// geo parameters fail the request; a malformed bounding box or unknown
// category token is ignored.
func (s *searchService) Search(ctx context.Context, q SearchQuery) (*pagination.PageResponse[PublicBusiness], error) {
	if err := validateGeoQuery(q); err != nil {
		return nil, err
	}

	mode := "search"
	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}()

	page := pagination.Clamp(q.Page, q.Limit)
	center, hasCenter := q.geoCenter()

	var candidates []models.Business
	if q.wantsRecommendations() {
		mode = "recommendations"
		recs, err := s.Recommendations(ctx, RecommendationQuery{UserID: q.UserID, Limit: recommendationPool})
		if err != nil {
			return nil, err
		}
		candidates = recs
		if q.HasCoordinates {
			candidates = filterWithCoordinates(candidates)
		}
	} else {
		var matched bool
		var err error
		candidates, matched, err = s.candidates(ctx, q, hasCenter)
		if err != nil {
			return nil, err
		}
		if !matched {
			resp := pagination.NewPageResponse([]PublicBusiness{}, page.Page, page.PageSize, 0)
			return &resp, nil
		}
	}

	results := make([]PublicBusiness, 0, len(candidates))
	for i := range candidates {
		results = append(results, project(&candidates[i]))
	}

	if err := s.attachRatings(ctx, results); err != nil {
		return nil, err
	}

	switch {
	case hasCenter:
		results = rankByDistance(results, center, q.RadiusKm)
	case q.SortBy == SortByRating:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].AverageRating > results[j].AverageRating
		})
	}

	resp := pagination.Slice(results, page)
	return &resp, nil
}

// candidates runs the store-side filters. matched is false when the
// category filter was supplied but named no known category.
func (s *searchService) candidates(ctx context.Context, q SearchQuery, hasCenter bool) ([]models.Business, bool, error) {
	query := approvedQuery(s.db.WithContext(ctx))

	if kw := search.NormalizeKeyword(q.Keyword); kw != "" {
		query = query.Where(keywordCondition(s.db, kw))
	}

	if categories, present := search.ParseCategories(q.Categories); present {
		if len(categories) == 0 {
			return nil, false, nil
		}
		query = query.Where("category IN ?", categories)
	}

	if q.HasCoordinates {
		query = query.Where(hasCoordinatesSQL)
	}


	if !hasCenter && q.SortBy == SortByCreatedAt {
		query = query.Order("created_at DESC")
	}

	var businesses []models.Business
	if err := query.Find(&businesses).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if locations := search.ExpandLocations(q.Locations); len(locations) > 0 {
		businesses = filterByLocation(businesses, locations)
	}
	if box, ok := geo.ParseBBox(q.BBox); ok {
		businesses = filterByBBox(businesses, box)
	}
	return businesses, true, nil
}

// filterByBBox keeps listings whose stored position lies in box. Inferred
// city centres are not considered.
func filterByBBox(businesses []models.Business, box geo.BBox) []models.Business {
	kept := businesses[:0]
	for _, b := range businesses {
		if b.HasCoordinates() && box.Contains(geo.Point{Lat: *b.Latitude, Lng: *b.Longitude}) {
			kept = append(kept, b)
		}
	}
	return kept
}

const hasCoordinatesSQL = "latitude IS NOT NULL AND longitude IS NOT NULL AND NOT (latitude = 0 AND longitude = 0)"

func filterWithCoordinates(businesses []models.Business) []models.Business {
	out := businesses[:0]
	for _, b := range businesses {
		if b.HasCoordinates() {
			out = append(out, b)
		}
	}
	return out
}

// project maps a listing to its public shape. Listings without coordinates
// borrow their city's centre when the city is known.
func project(b *models.Business) PublicBusiness {
	pb := PublicBusiness{
		ID:          b.ID,
		Name:        b.Name,
		Category:    b.Category,
		Address:     b.Address,
		City:        b.City,
		Description: b.Description,
		Phone:       b.Phone,
		Email:       b.Email,
		Website:     b.Website,
		OpenDays:    b.OpenDays,
		IsFeatured:  b.IsFeatured,
		CreatedAt:   b.CreatedAt,
	}

	if b.HasCoordinates() {
		lat, lng := *b.Latitude, *b.Longitude
		pb.Latitude, pb.Longitude = &lat, &lng
		return pb
	}

	if centre, ok := geo.CityCentroid(search.CanonicalCity(search.Fold(b.City))); ok {
		pb.Latitude, pb.Longitude = &centre.Lat, &centre.Lng
		pb.CoordinatesInferred = true
	}
	return pb
}

type ratingRow struct {
	BusinessID string
	Average    float64
}

// attachRatings fills AverageRating for every result with one aggregate
// query. Listings without reviews keep 0.
func (s *searchService) attachRatings(ctx context.Context, results []PublicBusiness) error {
	if len(results) == 0 {
		return nil
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}

	var rows []ratingRow
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("business_id, AVG(rating) AS average").
		Where("business_id IN ?", ids).
		Group("business_id").
		Scan(&rows).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	averages := make(map[string]float64, len(rows))
	for _, row := range rows {
		averages[row.BusinessID] = math.Round(row.Average*100) / 100
	}
	for i := range results {
		results[i].AverageRating = averages[results[i].ID]
	}
	return nil
}

// rankByDistance drops results without a position or outside radiusKm and
// orders the rest nearest first.
func rankByDistance(results []PublicBusiness, center geo.Point, radiusKm *float64) []PublicBusiness {
	ranked := make([]PublicBusiness, 0, len(results))
	for _, r := range results {
		if r.Latitude == nil || r.Longitude == nil {
			continue
		}
		d := geo.DistanceKm(center, geo.Point{Lat: *r.Latitude, Lng: *r.Longitude})
		if radiusKm != nil && d > *radiusKm {
			continue
		}
		d = math.Round(d*100) / 100
		r.DistanceKm = &d
		ranked = append(ranked, r)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].DistanceKm < *ranked[j].DistanceKm
	})
	return ranked
}

type preferenceRow struct {
	Value string
	Hits  int64
}

// Recommendations returns recent approved listings. Explicit category or
// location filters narrow the list directly. Otherwise an identified
// caller's review history picks their top categories and cities; when that
// yields nothing the generic newest-first list is returned. Missing history
// is never an error.
func (s *searchService) Recommendations(ctx context.Context, q RecommendationQuery) ([]models.Business, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultRecommendations
	}
	limit = min(limit, recommendationPool)

	if q.Category != "" || q.Location != "" {
		return s.filteredRecent(ctx, q.Category, q.Location, limit)
	}

	if q.UserID != "" {
		personalized, err := s.personalized(ctx, q.UserID, limit)
		if err != nil {
			return nil, err
		}
		if len(personalized) > 0 {
			return personalized, nil
		}
	}

	return s.recent(ctx, limit)
}

func (s *searchService) recent(ctx context.Context, limit int) ([]models.Business, error) {
	var businesses []models.Business
	err := approvedQuery(s.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(limit).
		Find(&businesses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return businesses, nil
}

func (s *searchService) filteredRecent(ctx context.Context, rawCategory, rawLocation string, limit int) ([]models.Business, error) {
	query := approvedQuery(s.db.WithContext(ctx))

	if categories, present := search.ParseCategories(rawCategory); present {
		if len(categories) == 0 {
			return []models.Business{}, nil
		}
		query = query.Where("category IN ?", categories)
	}

	var businesses []models.Business
	if err := query.Order("created_at DESC").Find(&businesses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if locations := search.ExpandLocations(rawLocation); len(locations) > 0 {
		businesses = filterByLocation(businesses, locations)
	}
	if len(businesses) > limit {
		businesses = businesses[:limit]
	}
	return businesses, nil
}

func (s *searchService) personalized(ctx context.Context, userID string, limit int) ([]models.Business, error) {
	categories, err := s.preferences(ctx, userID, "businesses.category")
	if err != nil {
		return nil, err
	}
	cities, err := s.preferences(ctx, userID, "LOWER(businesses.city)")
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 && len(cities) == 0 {
		return nil, nil
	}

	var businesses []models.Business
	err = approvedQuery(s.db.WithContext(ctx)).
		Where(s.db.Session(&gorm.Session{NewDB: true}).
			Where("category IN ?", categories).
			Or("LOWER(city) IN ?", cities)).
		Order("created_at DESC").
		Limit(limit).
		Find(&businesses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return businesses, nil
}

// preferences returns up to three values of expr, most reviewed first, over
// the user's reviews of approved listings.
func (s *searchService) preferences(ctx context.Context, userID, expr string) ([]string, error) {
	var rows []preferenceRow
	err := s.db.WithContext(ctx).
		Table("reviews").
		Select(expr+" AS value, COUNT(*) AS hits").
		Joins("JOIN businesses ON businesses.id = reviews.business_id").
		Where("reviews.user_id = ?", userID).
		Where("businesses.status = ?", models.BusinessStatusApproved).
		Where("reviews.deleted_at IS NULL AND businesses.deleted_at IS NULL").
		Where(expr + " <> ''").
		Group(expr).
		Order("hits DESC, value ASC").
		Limit(preferredRecommendationsN).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	values := make([]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Value)
	}
	return values, nil
}
