package main

import (
	"log"
	"os"

	"chosenoffset.com/umbra/internal/game"
	ebitenrender "chosenoffset.com/umbra/internal/render/ebiten"
	"chosenoffset.com/umbra/internal/scene"
)

func main() {
	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	// Load the lighting shader source
	lightingShaderSrc, err := os.ReadFile("shaders/lighting.kage")
	if err != nil {
		log.Printf("Warning: Failed to load lighting shader: %v", err)
	}

	// Load the scene description
	cfg, err := scene.Load("data/scene.json")
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	log.Printf("Loaded scene %q: %d walls, %d sources, texel budget %d",
		cfg.Name, len(cfg.Walls), len(cfg.Sources), cfg.MaxTexelBudget)

	demo, err := game.New(renderer, inputMgr, cfg, lightingShaderSrc)
	if err != nil {
		log.Fatalf("Failed to create game: %v", err)
	}

	// Set up the window
	engine.SetWindowSize(int(cfg.Width), int(cfg.Height))
	engine.SetWindowTitle("umbra - shadow cache demo")
	engine.SetWindowResizable(true)

	log.Println("Starting demo...")
	if err := engine.RunGame(demo); err != nil {
		log.Fatal(err)
	}
}
