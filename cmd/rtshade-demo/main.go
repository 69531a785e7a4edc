// Command rtshade-demo renders one fixed scene through the shading and
// visibility engine and writes it to a raw scanline-major byte stream
// (§6.3), exercising the full component stack end to end: the shader
// registry (plastic/mirror/glass/light/scloud/tsplat/grass), the light
// set, the worker pool, and the output buffer. Geometry, the
// intersection kernel, and file encoding proper are all out of this
// module's scope (§1) — this command stands in for them with the
// in-memory fake kernel and a hand-rolled byte writer, the same role the
// teacher's cmd/benchmark plays for render/.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"

	"github.com/lixenwraith/rtshade/config"
	"github.com/lixenwraith/rtshade/dispatch"
	"github.com/lixenwraith/rtshade/framebuffer"
	"github.com/lixenwraith/rtshade/logging"
	"github.com/lixenwraith/rtshade/material/cloud"
	"github.com/lixenwraith/rtshade/material/grass"
	"github.com/lixenwraith/rtshade/material/lightshader"
	"github.com/lixenwraith/rtshade/material/phong"
	"github.com/lixenwraith/rtshade/rt"
	"github.com/lixenwraith/rtshade/rt/fake"
	"github.com/lixenwraith/rtshade/spectrum"
	"github.com/lixenwraith/rtshade/view"
	"github.com/lixenwraith/rtshade/vmath"
)

var (
	width       = flag.Int("width", 320, "output image width in pixels")
	height      = flag.Int("height", 240, "output image height in pixels")
	out         = flag.String("out", "rtshade-demo.raw", "output file path (raw W*H*3 bytes, bottom-up scanline order)")
	hypersample = flag.Int("hypersample", 4, "extra sub-pixel rays per pixel (0 disables antialiasing)")
	bounces     = flag.Int("bounces", 6, "max reflection/refraction recursion depth")
	ambient     = flag.Float64("ambient", 0.1, "ambient light intensity fraction")
	seed        = flag.Uint64("seed", 1, "noise/RNG seed for the cloud and grass shaders")
	workers     = flag.Int("workers", runtime.NumCPU(), "worker goroutine count")
)

func main() {
	flag.Parse()
	log := logging.Default

	kernel := fake.NewKernel()

	floor := &rt.Region{Name: "floor", ShaderName: "plastic", Params: "sp=0.2 di=0.8", Override: ptrVec3(vmath.V3(0.55, 0.55, 0.55))}
	kernel.AddPlane(&fake.Plane{Point: vmath.V3(0, -1.4, 0), Normal0: vmath.V3(0, 1, 0), Region: floor})

	redSphere := &rt.Region{Name: "red-plastic", ShaderName: "plastic", Override: ptrVec3(vmath.V3(0.8, 0.15, 0.15))}
	kernel.AddSphere(&fake.Sphere{Center: vmath.V3(-1.6, -0.4, 6), R: 1.0, Region: redSphere})

	mirrorSphere := &rt.Region{Name: "mirror-ball", ShaderName: "mirror"}
	kernel.AddSphere(&fake.Sphere{Center: vmath.V3(1.6, -0.4, 6), R: 1.0, Region: mirrorSphere})

	glassSphere := &rt.Region{Name: "glass-ball", ShaderName: "glass"}
	kernel.AddSphere(&fake.Sphere{Center: vmath.V3(0, 1.1, 5), R: 0.6, Region: glassSphere})

	cloudRegion := &rt.Region{Name: "noise-cloud", ShaderName: "scloud", AirCode: 1, Params: "scale=1.5 octaves=3"}
	kernel.AddSphere(&fake.Sphere{Center: vmath.V3(-0.6, 1.3, 9), R: 0.9, Region: cloudRegion})

	grassRegion := &rt.Region{Name: "grass-patch", ShaderName: "grass", AirCode: 1, Params: "height=1.5 radius=0.015"}
	kernel.AddSphere(&fake.Sphere{Center: vmath.V3(0.8, -1.1, 4.5), R: 0.5, Region: grassRegion})

	lightRegion := &rt.Region{Name: "key-light", ShaderName: "light", Params: "intensity=3000 angle=140", Override: ptrVec3(vmath.V3(1, 1, 0.92))}
	kernel.AddSphere(&fake.Sphere{Center: vmath.V3(3, 4, 2), R: 0.3, Region: lightRegion})

	regions := []*rt.Region{floor, redSphere, mirrorSphere, glassSphere, cloudRegion, grassRegion, lightRegion}

	cfg := config.Default()
	cfg.MaxBounces = *bounces
	cfg.MaxIreflect = 8
	cfg.Background = spectrum.RGBOf(0.05, 0.05, 0.12)
	cfg.Gamma = 2.2

	v := view.Init(&cfg, kernel, log)

	ambientGet := func() float64 { return *ambient }
	for _, name := range []string{"plastic", "mirror", "glass"} {
		vt, err := phong.New(name, v.Shader.Trace, ambientGet)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rtshade-demo:", err)
			os.Exit(1)
		}
		v.Registry.Register(vt)
	}
	v.Registry.Register(lightshader.New(v.Lights))
	v.Registry.Register(cloud.NewTsplat(*seed))
	v.Registry.Register(cloud.NewScloud(*seed, v.Shader.Trace, v.Dispatch.LightObs))
	v.Registry.Register(grass.New(*seed))

	kept, err := view.Setup(v.Registry, regions, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rtshade-demo: setup:", err)
		os.Exit(1)
	}
	log.Infof("rtshade-demo: %d/%d regions kept after setup", len(kept), len(regions))

	aspect := float64(*width) / float64(*height)
	cam := dispatch.NewCamera(
		vmath.V3(0, 0, -5),
		vmath.V3(1, 0, 0), vmath.V3(0, 1, 0), vmath.V3(0, 0, 1),
		2.0/float64(*width), (2.0/aspect)/float64(*height), aspect,
		40, 8, *width, false,
	)

	v.Frame2Init(view.FrameOptions{
		Width: *width, Height: *height,
		Mode:            framebuffer.Scanline,
		Camera:          cam,
		Workers:         *workers,
		AmbientFraction: *ambient,
		ViewToModel:     vmath.Identity(),
	})
	v.Buffer.Benchmark = false

	rngFor := func(worker int) *rand.Rand {
		return rand.New(rand.NewPCG(*seed, uint64(worker)+1))
	}
	jitter := *hypersample > 0
	if !v.RenderFrame(context.Background(), rngFor, *hypersample, jitter) {
		fmt.Fprintln(os.Stderr, "rtshade-demo: render cancelled")
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rtshade-demo:", err)
		os.Exit(1)
	}
	defer f.Close()

	ditherRNG := rand.New(rand.NewPCG(*seed, 99))
	nonBackground := cfg.Background.Add(spectrum.Const(1.0 / 255))
	row := make([]byte, *width*3)
	for y := 0; y < *height; y++ {
		for x := 0; x < *width; x++ {
			r, g, b, _ := v.Buffer.Bytes(x, y, ditherRNG, nonBackground)
			row[x*3], row[x*3+1], row[x*3+2] = r, g, b
		}
		if _, err := f.Write(row); err != nil {
			fmt.Fprintln(os.Stderr, "rtshade-demo:", err)
			os.Exit(1)
		}
	}
	log.Infof("rtshade-demo: wrote %dx%d to %s", *width, *height, *out)
}

func ptrVec3(v vmath.Vec3) *vmath.Vec3 { return &v }
