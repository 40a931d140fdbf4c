// Command starmap-render renders a saved project to PNG, JPEG or SVG without
// opening the editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"starmap/internal/app"
	"starmap/internal/export"
	"starmap/internal/history"
	"starmap/internal/project"
	"starmap/internal/render"
	"starmap/internal/version"
)

func main() {
	projectPath := flag.String("project", "", "Path to a .starmap (JSON) or .yaml project")
	modeName := flag.String("mode", "", "View: star, street, canvas, landscape or portrait (default: the project's)")
	out := flag.String("out", "", "Output file; the extension picks png, jpg or svg (default: <project>-<mode>.png)")
	quality := flag.Int("quality", export.DefaultJPEGQuality, "JPEG quality 1-100")
	useHistory := flag.Bool("history", false, "Cache geocoder answers in the shared history database")
	watch := flag.Bool("watch", false, "Render again whenever the project file changes")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *projectPath == "" {
		fmt.Println("Usage: starmap-render -project <file> [-mode star] [-out poster.png] [-watch]")
		os.Exit(1)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store *history.Store
	if *useHistory {
		path, err := history.DefaultPath()
		if err == nil {
			store, err = history.Open(ctx, path)
		}
		if err != nil {
			log.Printf("History disabled: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	services, err := app.NewServices(app.EndpointsFromEnv(), store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	r := &runner{
		services: services,
		mode:     *modeName,
		out:      *out,
		opts:     export.Options{JPEGQuality: *quality},
	}
	if err := r.run(ctx, *projectPath); err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		if !*watch {
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}

	w, err := app.NewHotReloader(*projectPath, app.DefaultDebounce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to watch %s: %v\n", *projectPath, err)
		os.Exit(1)
	}
	defer w.Close()
	w.OnChange(func(path string) {
		if err := r.run(ctx, path); err != nil {
			log.Printf("Render failed: %v", err)
		}
	})
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", *projectPath)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
		os.Exit(1)
	}
}

// runner renders one project file per call.
type runner struct {
	services *app.Services
	mode     string
	out      string
	opts     export.Options
}

func (r *runner) run(ctx context.Context, path string) error {
	p, err := project.Load(path)
	if err != nil {
		return err
	}
	mode, err := pickMode(r.mode, p.Mode)
	if err != nil {
		return err
	}
	settings, err := p.Settings(ctx, r.services.Resolver)
	if err != nil {
		return err
	}

	controller := render.NewController(render.Config{
		Stars:   r.services.StarsFor(func() (*project.File, string) { return p, path }),
		Streets: r.services.Streets,
	})
	res, err := controller.Render(ctx, mode, settings)
	if err != nil {
		return err
	}

	dest := outputPath(path, r.out, mode)
	if err := export.WriteFile(dest, res, r.opts); err != nil {
		return err
	}
	fmt.Printf("%s #%d: %s -> %s\n", mode.Title(), res.Generation, res.Label, dest)
	return nil
}

// pickMode prefers the -mode flag over the mode saved in the project.
func pickMode(flagValue string, saved render.Mode) (render.Mode, error) {
	if strings.TrimSpace(flagValue) == "" {
		return saved, nil
	}
	return render.ParseMode(strings.TrimSpace(flagValue))
}

// outputPath names the poster after the project when -out is empty.
func outputPath(projectPath, out string, mode render.Mode) string {
	if out != "" {
		return out
	}
	base := strings.TrimSuffix(projectPath, filepath.Ext(projectPath))
	return base + "-" + mode.String() + export.PNG.Extension()
}
