// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command fxdemo renders a procedural scene through the standard effect
// chain on the CPU renderer and writes the last frame to an image file.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/furui/fastnoiselite-go"
	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/bridge"
	"github.com/gogpu/framegraph/config"
	"github.com/gogpu/framegraph/passes"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/framegraph/resource"
	"github.com/gogpu/framegraph/shader"
	"github.com/pkg/profile"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func main() {
	var (
		width   = flag.Int("width", 320, "frame width")
		height  = flag.Int("height", 180, "frame height")
		frames  = flag.Int("frames", 8, "frames to render")
		cfgPath = flag.String("config", "", "HCL chain settings (defaults when empty)")
		output  = flag.String("out", "fxdemo.png", "output file (.png, .bmp or .tiff)")
		scale   = flag.Float64("scale", 1, "output image scale")
		shaders = flag.Bool("shaders", false, "compile the chain's WGSL with naga")
		verbose = flag.Bool("v", false, "log frame graph activity")
		prof    = flag.String("profile", "", "write a CPU profile into this directory")
	)
	flag.Parse()

	if *prof != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*prof), profile.Quiet).Stop()
	}

	if *verbose {
		framegraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	settings := config.Default()
	if *cfgPath != "" {
		s, err := config.Load(*cfgPath, config.WithSize(*width, *height))
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		settings = s
	}

	var opts []framegraph.Option
	opts = append(opts, framegraph.WithSize(*width, *height))
	if *shaders {
		cache, err := shader.NewCache(shader.DefaultCacheSize)
		if err != nil {
			log.Fatalf("Failed to create shader cache: %v", err)
		}
		opts = append(opts, framegraph.WithShaderCache(cache))
	}

	g := framegraph.New(resource.NewSoftwareAllocator(), opts...)
	defer g.Dispose()

	renderer := render.NewSoftwareRenderer(*width, *height)
	scene := render.NewScene(render.RGB(0.05, 0.07, 0.12))
	camera := render.NewPerspectiveCamera(60, float64(*width)/float64(*height), 0.1, 100)

	if err := addScene(g, scene); err != nil {
		log.Fatalf("Failed to add scene: %v", err)
	}

	frame := 0
	if settings.ToneMapping.ExposureImport != "" {
		err := g.Bridge().RegisterImport(bridge.Import{
			ID: settings.ToneMapping.ExposureImport,
			Get: func() (any, error) {
				return settings.ToneMapping.Exposure * (1 + 0.1*math.Sin(float64(frame))), nil
			},
		})
		if err != nil {
			log.Fatalf("Failed to register exposure import: %v", err)
		}
	}

	if _, err := passes.BuildChain(g, settings, passes.Sources{Clouds: newClouds()}); err != nil {
		log.Fatalf("Failed to build chain: %v", err)
	}

	for frame = 0; frame < *frames; frame++ {
		report := g.Render(renderer, scene, camera)
		for _, p := range report.Passes {
			if p.Status != framegraph.PassExecuted && p.Status != framegraph.PassDisabled {
				log.Printf("frame %d: %s %s: %v", report.Frame, p.Name, p.Status, p.Err)
			}
		}
	}

	if t := g.Timer(); t != nil && t.Enabled() {
		for _, label := range t.Labels() {
			s, _ := t.Stats(label)
			log.Printf("%-22s last %-10v avg %-10v max %v", label, s.Last, s.Average, s.Max)
		}
	}

	img := image.Image(renderer.Screen().Pixmap().Image())
	if *scale > 0 && *scale != 1 {
		w := max(1, int(float64(*width)**scale))
		h := max(1, int(float64(*height)**scale))
		img = render.ScaleImage(img, w, h)
	}
	if err := save(*output, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Frame saved to %s (%dx%d, %d frames)", *output, img.Bounds().Dx(), img.Bounds().Dy(), *frames)
}

// addScene adds the host pass drawing a sky gradient with a glowing sun
// into scene color, and a depth ramp into scene depth.
func addScene(g *framegraph.FrameGraph, scene *render.BasicScene) error {
	for _, key := range []string{passes.SceneColor, passes.SceneDepth} {
		if _, err := g.Registry().Register(resource.Descriptor{Key: key}); err != nil {
			return err
		}
	}
	return g.AddPass(passes.NewFunc("scene", nil,
		[]framegraph.ResourceRef{framegraph.Write(passes.SceneColor), framegraph.Write(passes.SceneDepth)},
		func(ctx *framegraph.Context) error {
			sky, _ := scene.Background().(render.Color)
			sunX := 0.3 + 0.05*float64(ctx.Frame%20)
			err := ctx.DrawTo(passes.SceneColor, render.NewQuad(&render.Material{
				Label: "scene.color",
				Fragment: func(u, v float64, _, _ int) render.Color {
					c := sky.Lerp(render.RGB(0.4, 0.6, 0.9), 1-v)
					if d := math.Hypot(u-sunX, v-0.35); d < 0.08 {
						c = c.Add(render.RGB(4, 3.2, 2).Scale(1 - d/0.08))
					}
					return c
				},
			}))
			if err != nil {
				return err
			}
			return ctx.DrawTo(passes.SceneDepth, render.NewQuad(&render.Material{
				Label: "scene.depth",
				Fragment: func(_, v float64, _, _ int) render.Color {
					return render.RGB(0.9+0.09*v, 0, 0)
				},
			}))
		}))
}

// newClouds returns fractal noise clouds, densest at the top of the frame.
func newClouds() passes.CloudFunc {
	noise := fastnoiselite.NewNoise()
	noise.SetNoiseType(fastnoiselite.NoiseTypeOpenSimplex2)
	noise.FractalType = fastnoiselite.FractalTypeFBm
	noise.Frequency = 3.0
	noise.SetFractalOctaves(4)

	return func(u, v float64) render.Color {
		n := float64(noise.GetNoise2D(fastnoiselite.FNLfloat(u), fastnoiselite.FNLfloat(v)))
		coverage := math.Max(0, n*0.5+0.5-0.45) * 2 * (1 - v)
		return render.RGBA(1, 1, 1, math.Min(coverage, 1))
	}
}

func save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", "":
		err = png.Encode(f, img)
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = fmt.Errorf("unsupported image format %q", ext)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
