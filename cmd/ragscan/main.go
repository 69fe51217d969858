package main

import (
	"context"
	"flag"
	"log"
	"path"
	"sort"
	"time"

	"repo-rag/internal/chunker"
	"repo-rag/internal/config"
	"repo-rag/internal/gitrepo"
	"repo-rag/internal/ingest"
	"repo-rag/internal/logger"
	"repo-rag/internal/models"
	"repo-rag/internal/ranker"
	"repo-rag/internal/source"
)

func main() {
	cfg := config.FromEnv()

	// Parse command line flags
	repoURL := flag.String("repo", "", "GitHub repository URL to clone or update before scanning")
	dir := flag.String("dir", cfg.DocsFolder, "Folder to scan when -repo is not given")
	reposFolder := flag.String("repos-folder", cfg.GitReposFolder, "Where repositories are cloned")
	query := flag.String("q", "", "Optional query; prints the chunks it would select")
	topK := flag.Int("top-k", cfg.TopK, "Number of chunks to select for -q")
	skipBinary := flag.Bool("skip-binary", cfg.Ingest.SkipBinary, "Only read allow-listed text files")
	extractPDF := flag.Bool("pdf", cfg.Ingest.ExtractPDF, "Extract text from PDF files")
	flag.Parse()

	logger.Setup(cfg)
	ctx := context.Background()

	root := *dir
	if *repoURL != "" {
		ref, ok := source.Classify(*repoURL)
		if !ok {
			log.Fatalf("Not a GitHub repository URL: %s", *repoURL)
		}

		acquirer := gitrepo.NewAcquirer(*reposFolder)
		acqCtx, acqCancel := withGitTimeout(ctx, cfg.GitTimeout)
		local, err := acquirer.Acquire(acqCtx, ref)
		acqCancel()
		if err != nil {
			log.Fatalf("Failed to acquire repository: %v", err)
		}
		log.Printf("Repository %s ready at %s (%s)", ref.URL, local.Path, local.Operation)
		root = local.Path
	}

	ingestor := ingest.NewIngestor(ingest.Options{
		SkipBinary:  *skipBinary,
		ExtractPDF:  *extractPDF,
		MaxFileSize: cfg.Ingest.MaxFileSize,
	})

	startTime := time.Now()
	manifest := ingestor.Manifest(ctx, root)
	docs := ingestor.Ingest(ctx, root)
	log.Printf("Scanned %s in %v: %d files visible, %d documents loaded",
		root, time.Since(startTime).Round(time.Millisecond), manifest.Count, docs.Len())

	printChunkStatistics(docs)

	if *query != "" {
		ranked := ranker.Rank(*query, docs, *topK)
		log.Printf("Query %q selects %d chunks:", *query, len(ranked))
		for i, sc := range ranked {
			log.Printf("  %d. %s chunk %d (%d matching words): %s",
				i+1, sc.SourcePath, sc.Index, sc.MatchCount, logger.Truncate(sc.Text, 80))
		}
	}
}

// withGitTimeout bounds ctx by timeout. Zero or negative means no limit.
func withGitTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// printChunkStatistics prints how the loaded documents split into chunks
func printChunkStatistics(docs *models.DocumentSet) {
	var totalChunks, totalLength int
	extensionMap := make(map[string]int)
	chunkCounts := make(map[string]int)

	for _, p := range docs.Paths() {
		text, _ := docs.Get(p)
		chunks := chunker.Split(text)

		totalChunks += len(chunks)
		for _, c := range chunks {
			totalLength += len(c)
		}
		chunkCounts[p] = len(chunks)

		ext := path.Ext(p)
		if ext == "" {
			ext = "(none)"
		}
		extensionMap[ext]++
	}

	log.Printf("Chunk Statistics:")
	log.Printf("  Total documents: %d", docs.Len())
	log.Printf("  Total chunks: %d", totalChunks)
	if totalChunks > 0 {
		log.Printf("  Average chunk length: %.1f characters", float64(totalLength)/float64(totalChunks))
	}

	log.Println("  Extension breakdown:")
	exts := make([]string, 0, len(extensionMap))
	for ext := range extensionMap {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		log.Printf("    %s: %d files", ext, extensionMap[ext])
	}

	paths := docs.Paths()
	sort.SliceStable(paths, func(i, j int) bool {
		return chunkCounts[paths[i]] > chunkCounts[paths[j]]
	})
	if len(paths) > 5 {
		paths = paths[:5]
	}
	if len(paths) > 0 {
		log.Println("  Documents with most chunks:")
		for _, p := range paths {
			log.Printf("    %s: %d chunks", p, chunkCounts[p])
		}
	}
}
