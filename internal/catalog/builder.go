package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/despensa-ai/order-engine/internal/observability"
)

// BuilderConfig holds crawl settings.
type BuilderConfig struct {
	// Workers bounds the concurrent subcategory fetches. The shared client
	// rate limiter still spaces out every logical request, so concurrency
	// never bypasses the per-request delay. Zero or one means sequential.
	Workers int
	// Progress, when set, is called after each subcategory fetch completes.
	Progress func(completed, total int)
}

// Builder crawls the remote category tree into an Index.
type Builder struct {
	client *Client
	logger *observability.Logger
	config BuilderConfig
}

// NewBuilder creates a catalog index builder.
func NewBuilder(client *Client, logger *observability.Logger, cfg BuilderConfig) *Builder {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Builder{client: client, logger: logger, config: cfg}
}

// subcatJob is one independent subcategory fetch with its ancestry.
type subcatJob struct {
	top wireCategory
	sub wireCategory
}

// Build fetches the category tree and flattens it into a deduplicated index.
// A failed branch is logged and skipped so its siblings still contribute; an
// empty or unreachable top level yields an empty index. The returned index is
// always usable, even alongside a non-nil error.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	idx := newIndex()

	top, err := b.client.TopCategories(ctx)
	if err != nil {
		b.logger.Warn().Err(err).Msg("Top-level category fetch failed, returning empty index")
		return idx, fmt.Errorf("fetch top categories: %w", err)
	}
	if len(top) == 0 {
		b.logger.Warn().Msg("Remote service returned no categories")
		return idx, nil
	}

	var jobs []subcatJob
	for _, cat := range top {
		idx.registerCategory(cat.Name, cat.ID)
		for _, sub := range cat.Categories {
			idx.registerCategory(sub.Name, sub.ID)
			jobs = append(jobs, subcatJob{top: cat, sub: sub})
		}
	}

	b.logger.Info().
		Int("categories", len(top)).
		Int("subcategories", len(jobs)).
		Int("workers", b.config.Workers).
		Msg("Crawling category tree")

	b.crawl(ctx, idx, jobs)

	b.logger.Info().
		Int("products", idx.Len()).
		Int("category_names", len(idx.CategoryIDs)).
		Msg("Catalog index built")

	return idx, nil
}

// crawl runs the subcategory fetches through a bounded worker pool, guarding
// the index and the product-id seen-set with one mutex.
func (b *Builder) crawl(ctx context.Context, idx *Index, jobs []subcatJob) {
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		completed int
		seen      = make(map[int]bool)
	)

	jobCh := make(chan subcatJob)

	for i := 0; i < b.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				b.fetchBranch(ctx, job, idx, seen, &mu)

				mu.Lock()
				completed++
				done, total := completed, len(jobs)
				mu.Unlock()
				if b.config.Progress != nil {
					b.config.Progress(done, total)
				}
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()
}

// fetchBranch retrieves one subcategory's leaf tier and folds its products
// into the index. Transport failures stop only this branch.
func (b *Builder) fetchBranch(ctx context.Context, job subcatJob, idx *Index, seen map[int]bool, mu *sync.Mutex) {
	tree, err := b.client.CategoryTree(ctx, job.sub.ID)
	if err != nil {
		b.logger.Warn().
			Err(err).
			Int("subcategory_id", job.sub.ID).
			Str("subcategory", job.sub.Name).
			Msg("Skipping unreachable catalog branch")
		return
	}

	topID := job.top.ID
	subID := job.sub.ID

	for _, leaf := range tree.Categories {
		if len(leaf.Products) == 0 {
			continue
		}
		leafID := leaf.ID

		for _, wp := range leaf.Products {
			if wp.ID == 0 {
				continue
			}

			mu.Lock()
			if seen[wp.ID] {
				mu.Unlock()
				continue
			}
			seen[wp.ID] = true
			idx.Products = append(idx.Products, Product{
				ID:              wp.ID,
				DisplayName:     wp.DisplayName,
				Packaging:       wp.Packaging,
				UnitPrice:       float64(wp.Instructions.UnitPrice),
				BulkPrice:       wp.Instructions.BulkPrice,
				ReferencePrice:  wp.Instructions.ReferencePrice,
				ReferenceFormat: wp.Instructions.ReferenceFormat,
				Lineage: Lineage{
					Category:    Category{ID: topID, Name: job.top.Name},
					Subcategory: Category{ID: subID, Name: job.sub.Name, ParentID: &topID},
					Leaf:        Category{ID: leafID, Name: leaf.Name, ParentID: &subID},
				},
			})
			mu.Unlock()
		}
	}
}
