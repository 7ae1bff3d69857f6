package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/milk9111/sunnyland/levels"
	"github.com/milk9111/sunnyland/prefabs"
	"github.com/milk9111/sunnyland/sim"
)

func main() {
	scenarioPath := flag.String("scenario", "cmd/replay/scenarios/meadow.yaml", "scenario yaml to play back")
	levelName := flag.String("level", "", "level name in levels/, overrides the scenario's level")
	playerFile := flag.String("player", prefabs.PlayerFile, "player prefab in prefabs/")
	extra := flag.Int("extra", 60, "frames to keep stepping after the scenario ends")
	quiet := flag.Bool("q", false, "do not log controller events")
	noScript := flag.Bool("noscript", false, "skip the player's listener script")
	flag.Parse()

	sc, err := sim.LoadScenario(*scenarioPath)
	if err != nil {
		log.Fatal(err)
	}

	name := sc.Level
	if *levelName != "" {
		name = *levelName
	}
	lvl, err := levels.LoadLevel(name)
	if err != nil {
		log.Fatal(err)
	}
	player, err := prefabs.LoadPlayerSpec(*playerFile)
	if err != nil {
		log.Fatal(err)
	}

	s, err := sim.New(sim.Options{
		Level:    lvl,
		Player:   player,
		Input:    sim.NewScriptedInput(sc),
		NoScript: *noScript,
		Debug:    !*quiet,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	log.SetFlags(0)
	log.SetPrefix("")
	total := sc.Frames() + *extra
	for i := 0; i < total; i++ {
		if !*quiet {
			log.SetPrefix(fmt.Sprintf("[%05d] ", s.Frame))
		}
		s.Step()
	}
	log.SetPrefix("")

	st := s.Controller.State()
	p := s.Body.Position()
	v := s.Body.Velocity()
	fmt.Printf("scenario %s on %s: %d frames\n", sc.Name, lvl.Name, s.Frame)
	fmt.Printf("position   %.3f %.3f\n", p.X(), p.Y())
	fmt.Printf("velocity   %.3f %.3f\n", v.X(), v.Y())
	fmt.Printf("grounded   %v\n", st.IsGrounded)
	fmt.Printf("on slope   %v\n", st.IsOnSlope)
	fmt.Printf("jumps      %d/%d\n", st.JumpCount, s.Controller.Config().MaxJumpCount)
	fmt.Printf("crouching  %v\n", st.IsCrouching)
	fmt.Printf("climbing   %v\n", st.IsClimbing)
	fmt.Printf("facing     %s\n", facingName(s.Facing.Right))
	if s.Script != nil {
		fmt.Printf("script %s state %v\n", s.Script.Path(), s.Script.State())
	}
}

func facingName(right bool) string {
	if right {
		return "right"
	}
	return "left"
}
