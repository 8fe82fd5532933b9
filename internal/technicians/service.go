package technicians

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/brightideas/dispatch-backend/pkg/db/models"
	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"gorm.io/gorm"
)

type technicianRepository interface {
	Upsert(ctx context.Context, tech *models.Technician) error
	FindByBadge(ctx context.Context, badgeID string) (*models.Technician, error)
	Update(ctx context.Context, tech *models.Technician) error
	Delete(ctx context.Context, badgeID string) error
	List(ctx context.Context) ([]models.Technician, error)
}

type photoStore interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) error
	MakePublic(ctx context.Context, object string) error
	PublicURL(object string) string
}

// PhotoInput carries one uploaded photo stream.
type PhotoInput struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// CreateInput captures the admin form for registering a technician.
// Name, badge and photo are all mandatory on create.
type CreateInput struct {
	Name    string
	BadgeID string
	Photo   *PhotoInput
}

// UpdateInput captures a partial edit; a nil Photo keeps the stored photo_url.
type UpdateInput struct {
	Name  *string
	Photo *PhotoInput
}

// Service exposes technician registry operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*TechnicianDTO, error)
	Update(ctx context.Context, badgeID string, input UpdateInput) (*TechnicianDTO, error)
	Delete(ctx context.Context, badgeID string) error
	Get(ctx context.Context, badgeID string) (*TechnicianDTO, error)
	List(ctx context.Context) ([]TechnicianDTO, error)
}

type service struct {
	repo       technicianRepository
	photos     photoStore
	pathPrefix string
}

// NewService builds a technician service backed by the store and photo bucket.
func NewService(repo technicianRepository, photos photoStore, pathPrefix string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("technician repository required")
	}
	if photos == nil {
		return nil, fmt.Errorf("photo store required")
	}
	if pathPrefix == "" {
		pathPrefix = "technician_photos"
	}
	return &service{
		repo:       repo,
		photos:     photos,
		pathPrefix: pathPrefix,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*TechnicianDTO, error) {
	name := strings.TrimSpace(input.Name)
	badgeID := strings.TrimSpace(input.BadgeID)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if badgeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "badge_id is required")
	}
	if input.Photo == nil || input.Photo.Body == nil || strings.TrimSpace(input.Photo.FileName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo is required")
	}

	photoURL, err := s.storePhoto(ctx, badgeID, input.Photo)
	if err != nil {
		return nil, err
	}

	tech := &models.Technician{
		BadgeID:  badgeID,
		Name:     name,
		PhotoURL: &photoURL,
	}
	if err := s.repo.Upsert(ctx, tech); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist technician")
	}
	return FromModel(tech), nil
}

func (s *service) Update(ctx context.Context, badgeID string, input UpdateInput) (*TechnicianDTO, error) {
	badgeID = strings.TrimSpace(badgeID)
	if badgeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "badge_id is required")
	}

	tech, err := s.repo.FindByBadge(ctx, badgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "technician not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load technician")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		tech.Name = name
	}

	if input.Photo != nil {
		photoURL, err := s.storePhoto(ctx, badgeID, input.Photo)
		if err != nil {
			return nil, err
		}
		tech.PhotoURL = &photoURL
	}

	if err := s.repo.Update(ctx, tech); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update technician")
	}
	return FromModel(tech), nil
}

func (s *service) Delete(ctx context.Context, badgeID string) error {
	badgeID = strings.TrimSpace(badgeID)
	if badgeID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "badge_id is required")
	}
	if err := s.repo.Delete(ctx, badgeID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete technician")
	}
	return nil
}

func (s *service) Get(ctx context.Context, badgeID string) (*TechnicianDTO, error) {
	badgeID = strings.TrimSpace(badgeID)
	if badgeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "badge_id is required")
	}
	tech, err := s.repo.FindByBadge(ctx, badgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "technician not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load technician")
	}
	return FromModel(tech), nil
}

func (s *service) List(ctx context.Context) ([]TechnicianDTO, error) {
	techs, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list technicians")
	}
	dtos := make([]TechnicianDTO, 0, len(techs))
	for i := range techs {
		dtos = append(dtos, *FromModel(&techs[i]))
	}
	return dtos, nil
}

// storePhoto uploads, publishes and returns the public URL. A failure at any
// step aborts the enclosing create/update without writing the technician.
func (s *service) storePhoto(ctx context.Context, badgeID string, photo *PhotoInput) (string, error) {
	object := s.photoObject(badgeID, photo.FileName)
	if err := s.photos.Upload(ctx, object, photo.ContentType, photo.Body); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload photo")
	}
	if err := s.photos.MakePublic(ctx, object); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish photo")
	}
	return s.photos.PublicURL(object), nil
}

func (s *service) photoObject(badgeID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = "photo"
	}
	return fmt.Sprintf("%s/%s_%s", s.pathPrefix, badgeID, cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
