package technicians

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/brightideas/dispatch-backend/pkg/db/models"
	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"gorm.io/gorm"
)

type memTechRepo struct {
	techs map[string]*models.Technician
}

func newMemTechRepo() *memTechRepo {
	return &memTechRepo{techs: map[string]*models.Technician{}}
}

func (m *memTechRepo) Upsert(_ context.Context, tech *models.Technician) error {
	stored := *tech
	m.techs[tech.BadgeID] = &stored
	return nil
}

func (m *memTechRepo) FindByBadge(_ context.Context, badgeID string) (*models.Technician, error) {
	tech, ok := m.techs[badgeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *tech
	return &copied, nil
}

func (m *memTechRepo) Update(_ context.Context, tech *models.Technician) error {
	return m.Upsert(context.Background(), tech)
}

func (m *memTechRepo) Delete(_ context.Context, badgeID string) error {
	delete(m.techs, badgeID)
	return nil
}

func (m *memTechRepo) List(_ context.Context) ([]models.Technician, error) {
	var out []models.Technician
	for _, tech := range m.techs {
		out = append(out, *tech)
	}
	return out, nil
}

type fakePhotoStore struct {
	uploaded []string
	public   []string
	fail     error
}

func (f *fakePhotoStore) Upload(_ context.Context, object, _ string, _ io.Reader) error {
	if f.fail != nil {
		return f.fail
	}
	f.uploaded = append(f.uploaded, object)
	return nil
}

func (f *fakePhotoStore) MakePublic(_ context.Context, object string) error {
	f.public = append(f.public, object)
	return nil
}

func (f *fakePhotoStore) PublicURL(object string) string {
	return "https://storage.googleapis.com/test-bucket/" + object
}

func photo(name string) *PhotoInput {
	return &PhotoInput{
		FileName:    name,
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpeg-bytes"),
	}
}

func TestCreateStoresPhotoUnderBadgePath(t *testing.T) {
	repo := newMemTechRepo()
	store := &fakePhotoStore{}
	svc, err := NewService(repo, store, "technician_photos")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	tech, err := svc.Create(context.Background(), CreateInput{
		Name:    "Jane Doe",
		BadgeID: "T001",
		Photo:   photo("head shot.jpg"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(store.uploaded) != 1 || store.uploaded[0] != "technician_photos/T001_head-shot.jpg" {
		t.Fatalf("unexpected upload path %v", store.uploaded)
	}
	if len(store.public) != 1 {
		t.Fatal("photo was not made public")
	}
	if tech.PhotoURL == nil || !strings.Contains(*tech.PhotoURL, "T001_head-shot.jpg") {
		t.Fatalf("unexpected photo url %v", tech.PhotoURL)
	}
}

func TestCreateRequiresPhoto(t *testing.T) {
	svc, err := NewService(newMemTechRepo(), &fakePhotoStore{}, "")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{Name: "Jane Doe", BadgeID: "T001"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code got %v", err)
	}
}

func TestCreateAbortsWhenUploadFails(t *testing.T) {
	repo := newMemTechRepo()
	store := &fakePhotoStore{fail: errors.New("bucket unavailable")}
	svc, err := NewService(repo, store, "")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{
		Name:    "Jane Doe",
		BadgeID: "T001",
		Photo:   photo("a.jpg"),
	})
	if err == nil {
		t.Fatal("expected dependency error")
	}
	if len(repo.techs) != 0 {
		t.Fatal("technician must not be written when the photo upload fails")
	}
}

func TestUpdateKeepsPhotoWhenAbsent(t *testing.T) {
	repo := newMemTechRepo()
	store := &fakePhotoStore{}
	svc, err := NewService(repo, store, "")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	created, err := svc.Create(context.Background(), CreateInput{
		Name:    "Jane Doe",
		BadgeID: "T001",
		Photo:   photo("a.jpg"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Jane Smith"
	updated, err := svc.Update(context.Background(), "T001", UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Jane Smith" {
		t.Fatalf("expected renamed technician got %s", updated.Name)
	}
	if updated.PhotoURL == nil || *updated.PhotoURL != *created.PhotoURL {
		t.Fatal("photo url must survive a name-only update")
	}
}

func TestUpdateUnknownBadge(t *testing.T) {
	svc, err := NewService(newMemTechRepo(), &fakePhotoStore{}, "")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	name := "Nobody"
	_, err = svc.Update(context.Background(), "ghost", UpdateInput{Name: &name})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}
