// cmd/folio/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"folio/internal/builder"
	"folio/internal/config"
	"folio/internal/medium"
	"folio/internal/scaffold"
	"folio/internal/server"
)

type appConfig struct {
	root       string
	configFile string
	debug      bool
	unsafe     bool
	port       int
	workers    int
}

func main() {
	appCfg := appConfig{}
	flag.StringVarP(&appCfg.root, "root", "C", ".", "Site root directory.")
	flag.StringVar(&appCfg.configFile, "config", "", "Site config file (default: site.yaml, site.yml or site.toml in the root).")
	flag.BoolVar(&appCfg.debug, "debug", false, "Enable debug mode for verbose output.")
	flag.BoolVar(&appCfg.unsafe, "unsafe", false, "Disable HTML sanitization. Allows all raw HTML.")
	flag.IntVar(&appCfg.port, "port", 1313, "Port for the local development server.")
	flag.IntVar(&appCfg.workers, "workers", 0, "Articles rendered in parallel (default: config, then CPU count).")
	flag.CommandLine.SetInterspersed(false)
	flag.Usage = printHelp
	flag.Parse()

	if appCfg.debug {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Operation failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg appConfig) error {
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return nil
	}

	opts := builder.BuildOptions{
		Unsafe:  appCfg.unsafe,
		Debug:   appCfg.debug,
		Workers: appCfg.workers,
		Out:     os.Stdout,
	}

	switch args[0] {
	case "gen":
		fmt.Println("--- Generating site from articles ---")
		site, _, err := loadSite(appCfg)
		if err != nil {
			return err
		}
		report, err := builder.BuildSite(ctx, site, opts)
		if err != nil {
			return fmt.Errorf("site generation failed: %w", err)
		}
		fmt.Printf("✅ Success! Generated %d articles (%d skipped, %d failed).\n",
			len(report.Articles), len(report.Skipped), len(report.Failed))
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d articles failed", len(report.Failed))
		}
		return nil

	case "serve":
		site, configPath, err := loadSite(appCfg)
		if err != nil {
			return err
		}
		// Every rebuild rereads the config so edits to it take effect.
		build := func(ctx context.Context) error {
			fmt.Println("--- Building site ---")
			site, _, err := loadSite(appCfg)
			if err != nil {
				return err
			}
			report, err := builder.BuildSite(ctx, site, opts)
			if err != nil {
				return err
			}
			fmt.Printf("📄 Site: %d articles generated.\n", len(report.Articles))
			return nil
		}
		return server.New(site, configPath, build).Run(ctx, fmt.Sprintf(":%d", appCfg.port))

	case "import":
		return runImport(ctx, appCfg, args[1:])

	case "new":
		if len(args) < 3 {
			flag.Usage()
			return nil
		}
		switch args[1] {
		case "site":
			return scaffold.CreateNewSite(args[2], time.Now(), os.Stdout)
		case "article":
			site, _, err := loadSite(appCfg)
			if err != nil {
				return err
			}
			_, err = scaffold.CreateNewArticle(site, strings.Join(args[2:], " "), time.Now(), os.Stdout)
			return err
		}
		flag.Usage()

	default:
		flag.Usage()
	}

	return nil
}

func runImport(ctx context.Context, appCfg appConfig, args []string) error {
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	dir := importCmd.String("dir", "", "Directory the article folder is created in (default: the site's articles directory).")
	browser := importCmd.Bool("browser", false, "Fetch the page with headless Chrome instead of plain HTTP.")
	timeout := importCmd.Duration("timeout", medium.DefaultTimeout, "Timeout for each page and image fetch.")
	importCmd.Usage = func() {
		fmt.Println("Usage: folio import [options] <medium-url>")
		fmt.Println("\nImport a Medium story as an article with its images.")
		fmt.Println("\nOptions:")
		importCmd.PrintDefaults()
	}
	if err := importCmd.Parse(args); err != nil {
		return err
	}
	if importCmd.NArg() != 1 {
		importCmd.Usage()
		return errors.New("import needs exactly one URL")
	}

	site, _, err := loadSite(appCfg)
	if err != nil {
		return err
	}
	im := &medium.Importer{
		Pages:         medium.NewHTTPFetcher(*timeout),
		Dir:           *dir,
		ArticleFile:   site.ArticleFile,
		ThumbnailFile: site.ThumbnailFile,
		Out:           os.Stdout,
	}
	if im.Dir == "" {
		im.Dir = site.Path(site.ArticlesDir)
	}
	if *browser {
		bf := medium.NewBrowserFetcher(*timeout)
		defer bf.Close()
		im.Images, im.Pages = im.Pages, bf
	}

	_, err = im.Import(ctx, importCmd.Arg(0))
	return err
}

func loadSite(appCfg appConfig) (config.SiteConfig, string, error) {
	if appCfg.configFile != "" {
		site, err := config.LoadSiteConfig(appCfg.configFile)
		return site, appCfg.configFile, err
	}
	return config.Discover(appCfg.root)
}

func printHelp() {
	fmt.Println("folio - a static site generator for markdown articles with math")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  folio [global-flags] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  gen                   Render every article and the index")
	fmt.Println("  serve                 Run a local dev server with auto-rebuild")
	fmt.Println("  import <url>          Import a Medium story. Use 'folio import -h' for options.")
	fmt.Println("  new site <name>       Create a new site scaffold")
	fmt.Println("  new article <title>   Create a new article from the archetype")
	fmt.Println()
	fmt.Println("Global Flags:")
	flag.PrintDefaults()
}
