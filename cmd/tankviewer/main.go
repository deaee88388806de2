package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"tankviewer/bridge"
	"tankviewer/config"
	"tankviewer/input"
	"tankviewer/picking"
	"tankviewer/rendering"
	"tankviewer/rendering/opengl"
	"tankviewer/viewer"
)

func init() {
	// GLFW and GL calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "settings.json", "Settings file")
		designPath  = flag.String("design", "", "Design geometry JSON (default: built-in sample)")
		profilePath = flag.String("profile", "", "Dome profile JSON (default: elliptical dome)")
		stressPath  = flag.String("stress", "", "Stress field JSON")
		legendPath  = flag.String("legend", "", "Write the stress legend to this image file")
		debug       = flag.Bool("debug", false, "Log per-frame diagnostics")
	)
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	in, err := viewer.ReadInputs(*designPath, *profilePath, *stressPath, settings.Geometry.ProfileSamples)
	if err != nil {
		log.Fatalf("Failed to read inputs: %v", err)
	}

	fmt.Println("=== Composite Tank Viewer ===")
	fmt.Printf("Cylinder: R=%.1f L=%.1f, dome depth %.1f, %d layers\n",
		in.Design.CylinderRadius, in.Design.TotalLength, in.Design.DomeDepth, len(in.Design.Layers))
	fmt.Printf("Window: %dx%d\n", settings.Window.Width, settings.Window.Height)

	if *debug {
		rendering.SetLogger(log.New(os.Stderr, "rendering: ", log.LstdFlags))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := input.NewQueue()
	window, err := opengl.NewWindow(opengl.WindowConfig{
		Width:  settings.Window.Width,
		Height: settings.Window.Height,
		Title:  settings.Window.Title,
		VSync:  settings.Window.VSync,
	}, queue)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer window.Terminate()

	renderer, err := rendering.New(window.Device())
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer renderer.Dispose()

	session := viewer.NewSession(renderer, settings)
	session.Debug = *debug
	if err := session.Load(in.Design, in.Profile, in.Field); err != nil {
		log.Fatalf("Failed to build tank geometry: %v", err)
	}

	if *legendPath != "" {
		if err := session.WriteLegend(*legendPath); err != nil {
			log.Printf("Legend not written: %v", err)
		} else {
			fmt.Printf("Stress legend written to %s\n", *legendPath)
		}
	}

	var hub *bridge.Hub
	if settings.Bridge.Addr != "" {
		hub = bridge.NewHub(queue)
		hub.Logger = log.New(os.Stderr, "bridge: ", log.LstdFlags)
		go func() {
			if err := hub.Serve(ctx, settings.Bridge.Addr); err != nil {
				log.Printf("Bridge stopped: %v", err)
			}
		}()
	}

	session.OnPointClick = func(hit picking.Hit) {
		fmt.Printf("Point on %s: world (%.4f, %.4f, %.4f), design (%.2f, %.2f, %.2f)\n",
			hit.ID, hit.World[0], hit.World[1], hit.World[2],
			hit.Design[0], hit.Design[1], hit.Design[2])
		if hub != nil {
			hub.BroadcastPoint(hit)
		}
	}

	fmt.Println(input.HelpText)

	if err := session.Run(ctx, window, queue); err != nil {
		log.Printf("Render loop stopped: %v", err)
	}
	fmt.Println("Shutting down")
}
