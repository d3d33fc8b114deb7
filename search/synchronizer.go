package search

import (
	"strconv"

	"app-registry-cms/models"
)

// Synchronizer turns entity lifecycle events into index operations.
type Synchronizer interface {
	MobileAppSaved(app *models.MobileApp)
	MobileAppDeleted(id uint)
	GallerySaved(gallery *models.Gallery)
	GalleryDeleted(id uint)
}

type IndexSynchronizer struct {
	dispatcher *Dispatcher
	appIndex   string
	galIndex   string
}

// NewIndexSynchronizer uses prefix for both index names.
func NewIndexSynchronizer(dispatcher *Dispatcher, prefix string) *IndexSynchronizer {
	return &IndexSynchronizer{
		dispatcher: dispatcher,
		appIndex:   prefix + MobileAppIndex,
		galIndex:   prefix + GalleryIndex,
	}
}

func (s *IndexSynchronizer) MobileAppSaved(app *models.MobileApp) {
	s.dispatcher.Upsert(s.appIndex, docID(app.ID), NewMobileAppDocument(app))
}

func (s *IndexSynchronizer) MobileAppDeleted(id uint) {
	s.dispatcher.Delete(s.appIndex, docID(id))
}

func (s *IndexSynchronizer) GallerySaved(gallery *models.Gallery) {
	s.dispatcher.Upsert(s.galIndex, docID(gallery.ID), NewGalleryDocument(gallery))
}

func (s *IndexSynchronizer) GalleryDeleted(id uint) {
	s.dispatcher.Delete(s.galIndex, docID(id))
}

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
