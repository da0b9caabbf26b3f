package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/intranet/models"
)

const (
	maxDocumentName     = 255
	maxDocumentLink     = 500
	maxDocumentLocation = 100
)

// DocumentService implements CRUD over HR policy documents.
type DocumentService struct {
	db *gorm.DB
}

// NewDocumentService binds the service to a request scoped session.
func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{db: db}
}

// DocumentInput is the payload for Create. An empty Location means DefaultLocation.
type DocumentInput struct {
	Name        string
	Description *string
	Link        string
	Location    string
}

// DocumentPatch holds the fields supplied to Update; nil fields are left untouched.
type DocumentPatch struct {
	Name        *string
	Description *string
	Link        *string
	Location    *string
}

// DocumentPage is one page of documents plus the total matching count.
type DocumentPage struct {
	Total     int64             `json:"total"`
	Documents []models.Document `json:"documents"`
}

func (in *DocumentInput) validate() error {
	if in.Location == "" {
		in.Location = models.DefaultLocation
	}
	var c fieldChecker
	c.text("name", in.Name, maxDocumentName)
	c.text("link", in.Link, maxDocumentLink)
	c.text("location", in.Location, maxDocumentLocation)
	return c.err()
}

func (p DocumentPatch) validate() error {
	var c fieldChecker
	if p.Name != nil {
		c.text("name", *p.Name, maxDocumentName)
	}
	if p.Link != nil {
		c.text("link", *p.Link, maxDocumentLink)
	}
	if p.Location != nil {
		c.text("location", *p.Location, maxDocumentLocation)
	}
	return c.err()
}

// Create stores a new document and returns it with id and timestamps.
func (s *DocumentService) Create(in DocumentInput) (*models.Document, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	doc := models.Document{
		Name:        in.Name,
		Description: in.Description,
		Link:        in.Link,
		Location:    in.Location,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents ordered by id. A non-empty location filters by
// case-insensitive substring.
func (s *DocumentService) List(page Page, location string) (*DocumentPage, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	filter := func(tx *gorm.DB) *gorm.DB {
		if location == "" {
			return tx
		}
		return tx.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}

	var total int64
	if err := s.db.Model(&models.Document{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, err
	}
	docs := make([]models.Document, 0)
	if err := s.db.Scopes(filter).Order("id ASC").Offset(page.Skip).Limit(page.Limit).Find(&docs).Error; err != nil {
		return nil, err
	}
	return &DocumentPage{Total: total, Documents: docs}, nil
}

// Get loads one document.
func (s *DocumentService) Get(id uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Document", ID: id}
		}
		return nil, err
	}
	return &doc, nil
}

// Update applies only the supplied fields.
func (s *DocumentService) Update(id uint, patch DocumentPatch) (*models.Document, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}
	doc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		doc.Name = *patch.Name
	}
	if patch.Description != nil {
		doc.Description = patch.Description
	}
	if patch.Link != nil {
		doc.Link = *patch.Link
	}
	if patch.Location != nil {
		doc.Location = *patch.Location
	}
	if err := s.db.Save(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document permanently.
func (s *DocumentService) Delete(id uint) error {
	res := s.db.Delete(&models.Document{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "Document", ID: id}
	}
	return nil
}

// GetLink returns only the SharePoint link of a document.
func (s *DocumentService) GetLink(id uint) (string, error) {
	var doc models.Document
	if err := s.db.Select("id", "link").First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &NotFoundError{Entity: "Document", ID: id}
		}
		return "", err
	}
	return doc.Link, nil
}
