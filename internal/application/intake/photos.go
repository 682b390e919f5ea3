package intake

import (
	"context"
	"errors"

	"grayco-suite/internal/application/emails"
	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/domain"
	"grayco-suite/internal/infrastructure/drive"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoFolder         = errors.New("A Drive folder link or ID is required")
	ErrDriveUnavailable = errors.New("Google Drive is not configured")
)

// Folders lists and fetches Drive files. *drive.Client satisfies it.
type Folders interface {
	ListFolder(ctx context.Context, folderID string) ([]drive.File, error)
	Download(ctx context.Context, id string) (emails.Attachment, error)
}

// Categorizer guesses a photo category from the image itself.
type Categorizer interface {
	SuggestCategory(ctx context.Context, image []byte, mimeType, fileName string) (string, error)
}

// Imported is one photo attached by ImportPhotos.
type Imported struct {
	FileName string `json:"file_name"`
	Category string `json:"category"`
}

// ImportResult summarizes a folder import.
type ImportResult struct {
	Imported []Imported `json:"imported"`
	Skipped  []string   `json:"skipped,omitempty"`
}

// ImportPhotos attaches every image in a Drive folder to the project. With an empty category and a
// Categorizer, each image is classified; otherwise category (default site) applies to all.
// Files already attached are skipped.
func (s *Service) ImportPhotos(ctx context.Context, projectID uuid.UUID, folderLink, category string) (*ImportResult, error) {
	folderID := drive.ExtractID(folderLink)
	if folderID == "" {
		return nil, ErrNoFolder
	}
	if s.Folders == nil {
		return nil, ErrDriveUnavailable
	}
	if category != "" && !domain.IsValidPhotoCategory(category) {
		return nil, pipeline.ErrInvalidPhotoCategory
	}
	if _, err := s.Pipeline.Get(ctx, projectID); err != nil {
		return nil, err
	}
	existing, err := s.Pipeline.ListPhotos(ctx, projectID, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.DriveFileID] = true
	}

	files, err := s.Folders.ListFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	out := &ImportResult{}
	for _, f := range files {
		if !f.IsImage() || seen[f.ID] {
			continue
		}
		cat := s.categorize(ctx, f, category)
		if _, err := s.Pipeline.AddPhoto(ctx, projectID, pipeline.PhotoInput{DriveFileID: f.ID, FileName: f.Name, Category: cat}); err != nil {
			log.Warn().Err(err).Str("file_id", f.ID).Msg("intake: photo import skipped")
			out.Skipped = append(out.Skipped, f.Name)
			continue
		}
		out.Imported = append(out.Imported, Imported{FileName: f.Name, Category: cat})
	}
	return out, nil
}

func (s *Service) categorize(ctx context.Context, f drive.File, category string) string {
	if category != "" {
		return category
	}
	if s.Categorizer == nil {
		return domain.PhotoSite
	}
	att, err := s.Folders.Download(ctx, f.ID)
	if err != nil {
		return domain.PhotoSite
	}
	cat, err := s.Categorizer.SuggestCategory(ctx, att.Data, f.MIMEType, f.Name)
	if err != nil {
		log.Warn().Err(err).Str("file", f.Name).Msg("intake: category suggestion failed")
	}
	if !domain.IsValidPhotoCategory(cat) {
		return domain.PhotoSite
	}
	return cat
}
