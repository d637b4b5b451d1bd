package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	imageeditor "github.com/menta2k/image-editor"
	"github.com/menta2k/image-editor/internal/config"
	"github.com/menta2k/image-editor/internal/utils"
	"github.com/menta2k/image-editor/pkg/bitmap"
	"github.com/menta2k/image-editor/pkg/client"
	"github.com/menta2k/image-editor/pkg/editor"
	"github.com/menta2k/image-editor/pkg/pixabay"
	"github.com/menta2k/image-editor/pkg/scene"
	"github.com/menta2k/image-editor/pkg/types"
)

// options carries the command line flags
type options struct {
	configPath string
	saveConfig string
	query      string
	pick       int
	images     string
	text       string
	shapes     string
	outDir     string
	outName    string
	format     string
	quality    float64
	overwrite  bool
}

func main() {
	var opts options
	var verbose bool

	flag.StringVar(&opts.configPath, "config", config.GetConfigPath(), "config file (.json or .toml)")
	flag.StringVar(&opts.saveConfig, "save-config", "", "write the effective configuration to this file (.json or .toml)")
	flag.StringVar(&opts.query, "query", "", "stock-photo search query")
	flag.IntVar(&opts.pick, "pick", 0, "index of the search result to place (-1 = none)")
	flag.StringVar(&opts.images, "image", "", "comma separated image URLs or paths to place")
	flag.StringVar(&opts.text, "text", "", "content of a text box to add (empty = none)")
	flag.StringVar(&opts.shapes, "shapes", "", "comma separated shapes to add: circle,rectangle,triangle")
	flag.StringVar(&opts.outDir, "out", "", "output directory (default from config)")
	flag.StringVar(&opts.outName, "name", "", "output file name (default from config)")
	flag.StringVar(&opts.format, "format", "", "export format: png|jpeg|webp (default from config)")
	flag.Float64Var(&opts.quality, "quality", 0, "export quality in (0,1] (default from config)")
	flag.BoolVar(&opts.overwrite, "overwrite", false, "replace an existing output file")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	log.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	})
	log.SetOutput(os.Stdout)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.outDir != "" {
		cfg.Export.OutputDir = opts.outDir
	}
	if opts.outName != "" {
		cfg.Export.FileName = opts.outName
	}
	if opts.format != "" {
		cfg.Export.DefaultFormat = opts.format
	}
	if opts.quality != 0 {
		cfg.Export.Quality = opts.quality
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.saveConfig != "" {
		if err := cfg.SaveToFile(opts.saveConfig); err != nil {
			return err
		}
		log.Infof("saved configuration to %s", opts.saveConfig)
	}

	exportFormat, err := bitmap.NormalizeFormat(cfg.Export.DefaultFormat)
	if err != nil {
		return err
	}
	path := utils.OutputPath(cfg.Export.OutputDir, cfg.Export.FileName, exportFormat)
	if utils.FileExists(path) && !opts.overwrite {
		return fmt.Errorf("%s already exists (use -overwrite to replace it)", path)
	}

	logger := log.StandardLogger()
	editorConfig := editor.Config{
		Width:       cfg.Canvas.Width,
		Height:      cfg.Canvas.Height,
		Background:  cfg.Canvas.Background,
		LoadTimeout: cfg.LoadTimeout(),
	}

	var provider client.SearchProvider = unconfiguredProvider{}
	if cfg.Search.APIKey != "" {
		provider, err = pixabay.NewClient(cfg.Search.APIKey, pixabay.Options{
			BaseURL:    cfg.Search.BaseURL,
			PerPage:    cfg.Search.PerPage,
			SafeSearch: cfg.Search.SafeSearch,
			Timeout:    cfg.SearchTimeout(),
			Logger:     logger,
		})
		if err != nil {
			return err
		}
	}

	ie := imageeditor.NewWithConfig(provider, bitmap.NewLoader(0), editorConfig, logger)
	if err := ie.Open(); err != nil {
		return err
	}
	defer ie.Close()

	ctx := context.Background()

	if opts.query != "" {
		results, err := ie.Search(ctx, opts.query)
		switch {
		case errors.Is(err, client.ErrNoResults):
			log.Warnf("no images found for %q", opts.query)
		case err != nil:
			return fmt.Errorf("search failed: %w", err)
		default:
			log.Infof("found %d images for %q", len(results), opts.query)
			for i, r := range results {
				log.Debugf("  [%d] id=%d tags=%q", i, r.ID, r.Tags)
			}
			if opts.pick >= 0 {
				r, ok := ie.Session().Result(opts.pick)
				if !ok {
					return fmt.Errorf("pick %d out of range (0..%d)", opts.pick, len(results)-1)
				}
				if _, err := ie.AddSearchResult(ctx, r); err != nil {
					return err
				}
				log.Infof("placed image %d (%s)", r.ID, r.Tags)
			}
		}
	}

	for _, src := range splitList(opts.images) {
		start := time.Now()
		obj, err := ie.Editor().AddImage(ctx, src)
		if err != nil {
			return err
		}
		b := obj.Bounds()
		log.Infof("placed %s as %dx%d in %s", src, b.Dx(), b.Dy(), time.Since(start).Round(time.Millisecond))
	}

	if opts.text != "" {
		obj, err := ie.Editor().AddText()
		if err != nil {
			return err
		}
		if _, err := ie.Editor().SetText(obj.ID(), strings.ReplaceAll(opts.text, `\n`, "\n")); err != nil {
			return err
		}
	}

	for _, kind := range splitList(opts.shapes) {
		if _, ok := scene.ParseShapeKind(kind); !ok {
			log.Warnf("unsupported shape %q ignored (supported: %v)", kind, scene.ShapeKinds())
		}
		if _, err := ie.Editor().AddShape(kind); err != nil {
			return err
		}
	}

	if err := utils.EnsureDir(cfg.Export.OutputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := ie.SaveExport(path, editor.WithFormat(exportFormat), editor.WithQuality(cfg.Export.Quality)); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(path)
	log.Infof("wrote %s (%s, %d objects)", abs, utils.FormatFileSize(info.Size()), ie.Editor().Len())
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// unconfiguredProvider stands in when no API key is available
type unconfiguredProvider struct{}

func (unconfiguredProvider) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	if _, err := client.NormalizeQuery(query); err != nil {
		return nil, err
	}
	return nil, &client.UnavailableError{Message: "no API key configured (set " + config.EnvAPIKey + ")"}
}
