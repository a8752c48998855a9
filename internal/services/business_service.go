package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"bizdir/internal/cache"
	apperrors "bizdir/internal/errors"
	"bizdir/internal/geo"
	"bizdir/internal/models"
	"bizdir/internal/pagination"
	"bizdir/internal/search"
)

// businessService handles listing CRUD for owners, the public and admins.
type businessService struct {
	db    *gorm.DB
	cache *cache.Versioned
}

// NewBusinessService creates a new BusinessServicer. cache may be nil.
func NewBusinessService(db *gorm.DB, c *cache.Versioned) BusinessServicer {
	return &businessService{db: db, cache: c}
}

func findBusiness(db *gorm.DB, id string) (*models.Business, error) {
	var business models.Business
	if err := db.First(&business, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBusinessNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &business, nil
}

func validateBusinessInput(input BusinessInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrValidation, "name is required")
	}
	if _, ok := models.ParseBusinessCategory(string(input.Category)); !ok {
		return apperrors.WithMessage(apperrors.ErrValidation, "unknown category")
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return apperrors.WithMessage(apperrors.ErrValidation, "latitude and longitude must be provided together")
	}
	if input.Latitude != nil {
		if !geo.ValidLatitude(*input.Latitude) || !geo.ValidLongitude(*input.Longitude) {
			return apperrors.WithMessage(apperrors.ErrValidation, "coordinates out of range")
		}
	}
	return nil
}

func openDaysMask(days *[7]bool) uint8 {
	if days == nil {
		return models.OpenDaysAll
	}
	return models.EncodeOpenDays(*days)
}

// CreateBusiness registers a listing in Pending status.
func (s *businessService) CreateBusiness(ctx context.Context, ownerID string, input BusinessInput) (*models.Business, error) {
	if err := validateBusinessInput(input); err != nil {
		return nil, err
	}
	category, _ := models.ParseBusinessCategory(string(input.Category))

	business := &models.Business{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(input.Name),
		Category:    category,
		Address:     strings.TrimSpace(input.Address),
		City:        strings.TrimSpace(input.City),
		Description: input.Description,
		Phone:       input.Phone,
		Email:       input.Email,
		Website:     input.Website,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Status:      models.BusinessStatusPending,
		OpenDays:    openDaysMask(input.OpenDays),
	}

	if err := s.db.WithContext(ctx).Create(business).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Bump(ctx, cache.FamilyCities)
	return business, nil
}

// UpdateBusiness lets the owner edit a listing while it is Pending or
// Approved. The status guard is repeated in the UPDATE so a concurrent
// moderation decision is not overwritten.
func (s *businessService) UpdateBusiness(ctx context.Context, ownerID, businessID string, input BusinessInput) (*models.Business, error) {
	var updated *models.Business
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		business, err := findBusiness(tx, businessID)
		if err != nil {
			return err
		}
		if business.OwnerID != ownerID {
			return apperrors.ErrForbidden
		}
		if business.Status != models.BusinessStatusPending && business.Status != models.BusinessStatusApproved {
			return apperrors.ErrBusinessNotEditable
		}
		if err := validateBusinessInput(input); err != nil {
			return err
		}
		category, _ := models.ParseBusinessCategory(string(input.Category))

		updates := map[string]interface{}{
			"name":        strings.TrimSpace(input.Name),
			"category":    category,
			"address":     strings.TrimSpace(input.Address),
			"city":        strings.TrimSpace(input.City),
			"description": input.Description,
			"phone":       input.Phone,
			"email":       input.Email,
			"website":     input.Website,
			"latitude":    nil,
			"longitude":   nil,
			"open_days":   openDaysMask(input.OpenDays),
		}
		if input.Latitude != nil {
			updates["latitude"] = *input.Latitude
			updates["longitude"] = *input.Longitude
		}

		res := tx.Model(&models.Business{}).
			Where("id = ? AND status = ?", business.ID, business.Status).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrBusinessStatusChanged
		}

		updated, err = findBusiness(tx, business.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Bump(ctx, cache.FamilyCities)
	return updated, nil
}

// GetOwnerBusinesses returns every listing of ownerID regardless of status.
func (s *businessService) GetOwnerBusinesses(ctx context.Context, ownerID string) ([]models.Business, error) {
	var businesses []models.Business
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&businesses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return businesses, nil
}

// ListApproved returns approved listings, newest first, narrowed by an
// optional keyword, city and category.
func (s *businessService) ListApproved(ctx context.Context, filter ListFilter) ([]models.Business, error) {
	query := approvedQuery(s.db.WithContext(ctx))

	if kw := search.NormalizeKeyword(filter.Keyword); kw != "" {
		query = query.Where(keywordCondition(s.db, kw))
	}
	if filter.Category != "" {
		categories, present := search.ParseCategories(filter.Category)
		if present && len(categories) == 0 {
			return []models.Business{}, nil
		}
		if len(categories) > 0 {
			query = query.Where("category IN ?", categories)
		}
	}

	var businesses []models.Business
	if err := query.Order("created_at DESC").Find(&businesses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if locations := search.ExpandLocations(filter.City); len(locations) > 0 {
		businesses = filterByLocation(businesses, locations)
	}
	return businesses, nil
}

// GetApprovedByID returns an approved listing. Listings in any other status
// are reported as not found.
func (s *businessService) GetApprovedByID(ctx context.Context, id string) (*models.Business, error) {
	var business models.Business
	err := approvedQuery(s.db.WithContext(ctx)).First(&business, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBusinessNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &business, nil
}

// ListByStatus pages through listings for the moderation queue.
func (s *businessService) ListByStatus(ctx context.Context, status *models.BusinessStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Business], error) {
	page.Defaults()

	query := s.db.WithContext(ctx).Model(&models.Business{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var businesses []models.Business
	if err := query.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&businesses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(businesses, page.Page, page.PageSize, total)
	return &resp, nil
}

// ListCities returns the distinct cities of approved listings, sorted.
func (s *businessService) ListCities(ctx context.Context) ([]string, error) {
	return cache.Remember(ctx, s.cache, cache.FamilyCities, "approved", func() ([]string, error) {
		cities := []string{}
		err := approvedQuery(s.db.WithContext(ctx)).
			Model(&models.Business{}).
			Where("city <> ''").
			Distinct().
			Order("city ASC").
			Pluck("city", &cities).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return cities, nil
	})
}

func approvedQuery(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", models.BusinessStatusApproved)
}

// likeEscaper escapes LIKE wildcards so keywords match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// keywordCondition matches kw as a substring of name, description, city or
// address, or as a lexicon word for the listing's category.
func keywordCondition(db *gorm.DB, kw string) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(kw) + "%"
	cond := db.Session(&gorm.Session{NewDB: true}).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Or(`LOWER(description) LIKE ? ESCAPE '\'`, pattern).
		Or(`LOWER(city) LIKE ? ESCAPE '\'`, pattern).
		Or(`LOWER(address) LIKE ? ESCAPE '\'`, pattern)
	if category, ok := search.CategoryForKeyword(kw); ok {
		cond = cond.Or("category = ?", category)
	}
	return cond
}

func filterByLocation(businesses []models.Business, locations map[string]struct{}) []models.Business {
	out := businesses[:0]
	for _, b := range businesses {
		if search.MatchesLocation(b.City, locations) {
			out = append(out, b)
		}
	}
	return out
}
