package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByFileName filters documents by exact file name
type ByFileName struct {
	FileName string
}

func (s ByFileName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("file_name = ?", s.FileName)
}

// ByDocumentID filters embedding rows by their parent document
type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}
