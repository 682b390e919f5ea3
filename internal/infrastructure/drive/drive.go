package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"grayco-suite/internal/application/emails"

	"github.com/rs/zerolog/log"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// MaxAttachmentSize is the largest file Download will pull into memory.
const MaxAttachmentSize = 10 * 1024 * 1024

const googleAppsPrefix = "application/vnd.google-apps"

var (
	ErrNoFileID      = errors.New("No file ID provided")
	ErrFileTooLarge  = emails.ErrAttachmentTooLarge
	ErrGoogleDocType = errors.New("Google Docs files cannot be directly downloaded")
)

// File is Drive metadata for one file.
type File struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MIMEType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	WebViewLink string `json:"web_view_link,omitempty"`
}

// IsImage reports whether the file is a photo worth importing.
func (f File) IsImage() bool { return strings.HasPrefix(f.MIMEType, "image/") }

// Client wraps the Drive v3 API for project artifacts.
type Client struct {
	svc *gdrive.Service
}

// ClientOptions turns an inline JSON key or a key file path into client options.
func ClientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

// New builds a Drive client. Extra options are appended after the credentials.
func New(ctx context.Context, creds string, opts ...option.ClientOption) (*Client, error) {
	all := append(ClientOptions(creds), option.WithScopes(gdrive.DriveScope))
	all = append(all, opts...)
	svc, err := gdrive.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("drive: new service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func toFile(f *gdrive.File) File {
	return File{ID: f.Id, Name: f.Name, MIMEType: f.MimeType, Size: f.Size, WebViewLink: f.WebViewLink}
}

// Metadata fetches name, type and size for a file.
func (c *Client) Metadata(ctx context.Context, id string) (*File, error) {
	if id == "" {
		return nil, ErrNoFileID
	}
	f, err := c.svc.Files.Get(id).
		Fields("id", "name", "mimeType", "size", "webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive: metadata %s: %w", id, err)
	}
	out := toFile(f)
	return &out, nil
}

// Download fetches a file as an email attachment. Native Google Docs and files over
// MaxAttachmentSize are refused so callers can fall back to a link.
func (c *Client) Download(ctx context.Context, id string) (emails.Attachment, error) {
	meta, err := c.Metadata(ctx, id)
	if err != nil {
		return emails.Attachment{}, err
	}
	if strings.HasPrefix(meta.MIMEType, googleAppsPrefix) {
		return emails.Attachment{}, ErrGoogleDocType
	}
	if meta.Size > MaxAttachmentSize {
		log.Warn().Str("file_id", id).Int64("bytes", meta.Size).Msg("drive: file too large to attach")
		return emails.Attachment{}, ErrFileTooLarge
	}
	resp, err := c.svc.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return emails.Attachment{}, fmt.Errorf("drive: download %s: %w", id, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAttachmentSize+1))
	if err != nil {
		return emails.Attachment{}, fmt.Errorf("drive: read %s: %w", id, err)
	}
	if len(data) > MaxAttachmentSize {
		return emails.Attachment{}, ErrFileTooLarge
	}
	name := meta.Name
	if name == "" {
		name = "attachment"
	}
	return emails.Attachment{FileName: name, MIMEType: meta.MIMEType, Data: data}, nil
}

// SharePublic grants "anyone with the link" read access so emailed links open for the customer.
func (c *Client) SharePublic(ctx context.Context, id string) error {
	if id == "" {
		return ErrNoFileID
	}
	_, err := c.svc.Permissions.Create(id, &gdrive.Permission{Role: "reader", Type: "anyone"}).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("drive: share %s: %w", id, err)
	}
	return nil
}

// ListFolder lists the non-trashed files directly inside a folder.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]File, error) {
	if folderID == "" {
		return nil, ErrNoFileID
	}
	var out []File
	call := c.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", strings.ReplaceAll(folderID, "'", ""))).
		Fields("nextPageToken", "files(id,name,mimeType,size,webViewLink)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		PageSize(100)
	err := call.Pages(ctx, func(page *gdrive.FileList) error {
		for _, f := range page.Files {
			out = append(out, toFile(f))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("drive: list %s: %w", folderID, err)
	}
	return out, nil
}

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`),
}

// ExtractID pulls a file or folder ID out of a Drive share link. A bare ID is returned as is.
func ExtractID(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(link); m != nil {
			return m[1]
		}
	}
	if !strings.ContainsAny(link, "/?=") {
		return link
	}
	return ""
}
