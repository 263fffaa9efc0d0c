package agreements

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/transferai/agreement-proxy/assist"
	"github.com/transferai/agreement-proxy/cache"
)

const imagesResourceTag = "pdf-images"

// ImageSet holds the rendered page images for an agreement set
type ImageSet struct {
	agreements  []assist.Agreement
	perDocument map[string][]string
}

// NewImageSet builds an ImageSet from already rendered pages
func NewImageSet(set []assist.Agreement, perDocument map[string][]string) *ImageSet {
	return &ImageSet{agreements: set, perDocument: perDocument}
}

// AggregateImages resolves the page images for every distinct document in
// the set concurrently, through the cache tiers. A document that fails to
// render contributes no pages and is not cached, so a later selection of the
// same set retries it.
func (s *Service) AggregateImages(ctx context.Context, set []assist.Agreement) *ImageSet {
	filenames := distinctFilenames(set)

	perDocument := make(map[string][]string, len(filenames))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, filename := range filenames {
		wg.Add(1)
		go func(filename string) {
			defer wg.Done()
			images, err := s.imagesForDocument(ctx, filename)
			if err != nil {
				log.Printf("Agreements: Failed to render document %s: %v", filename, err)
				images = []string{}
			}
			mu.Lock()
			perDocument[filename] = images
			mu.Unlock()
		}(filename)
	}
	wg.Wait()

	return &ImageSet{
		agreements:  set,
		perDocument: perDocument,
	}
}

func (s *Service) imagesForDocument(ctx context.Context, filename string) ([]string, error) {
	key := cache.BuildKey(imagesResourceTag, filename)

	start := time.Now()
	loaded := false
	var images []string
	err := cache.ResolveJSON(s.cache, key, func() ([]byte, error) {
		loaded = true
		s.metricsWriter.RecordCacheMiss()
		data, err := s.apiClient.PdfImages(ctx, filename)
		if err != nil {
			return nil, err
		}
		return json.Marshal(data)
	}, cache.ResolveOptions{}, &images)
	if err != nil {
		return nil, err
	}
	if !loaded {
		s.metricsWriter.RecordCacheHit()
	}
	s.metricsWriter.RecordResolveDuration(start)
	return images, nil
}

// distinctFilenames collects non-empty document filenames in the order the
// agreements list them, skipping repeats
func distinctFilenames(set []assist.Agreement) []string {
	seen := make(map[string]bool, len(set))
	var filenames []string
	for _, agreement := range set {
		if agreement.PdfFilename == "" || seen[agreement.PdfFilename] {
			continue
		}
		seen[agreement.PdfFilename] = true
		filenames = append(filenames, agreement.PdfFilename)
	}
	return filenames
}

// ImagesFor returns the page images for the agreement at index. Agreements
// without a document, or whose render failed, return an empty list.
func (is *ImageSet) ImagesFor(index int) []string {
	if index < 0 || index >= len(is.agreements) {
		return nil
	}
	filename := is.agreements[index].PdfFilename
	if filename == "" {
		return []string{}
	}
	return is.perDocument[filename]
}

// Union returns every page image of the set exactly once, ordered by the
// first agreement that references it
func (is *ImageSet) Union() []string {
	seen := make(map[string]bool)
	var union []string
	for _, agreement := range is.agreements {
		for _, image := range is.perDocument[agreement.PdfFilename] {
			if seen[image] {
				continue
			}
			seen[image] = true
			union = append(union, image)
		}
	}
	return union
}

// InitialActiveIndex returns the agreement to present first: the first
// institution-specific record, falling back to 0 when only the IGETC
// reference is present
func (is *ImageSet) InitialActiveIndex() int {
	for i, agreement := range is.agreements {
		if !agreement.IsIgetc {
			return i
		}
	}
	return 0
}

// Len returns the number of agreements backing the set
func (is *ImageSet) Len() int {
	return len(is.agreements)
}
