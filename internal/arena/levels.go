package arena

import "math/rand"

// Levels returns the built-in corridor campaign, easiest first.
func Levels() []Level {
	return []Level{
		{
			Name:   "first-steps",
			Size:   8,
			Start:  0,
			Facing: East,
			Stairs: 7,
		},
		{
			Name:   "first-blood",
			Size:   10,
			Start:  0,
			Facing: East,
			Stairs: 9,
			Units: []UnitSpec{
				{Pos: 1, Kind: KindSludge},
			},
		},
		{
			Name:   "the-gauntlet",
			Size:   12,
			Start:  0,
			Facing: East,
			Stairs: 11,
			Units: []UnitSpec{
				{Pos: 1, Kind: KindSludge},
				{Pos: 4, Kind: KindArcher},
				{Pos: 8, Kind: KindCaptive},
				{Pos: 10, Kind: KindSludge},
			},
		},
		{
			Name:   "about-face",
			Size:   12,
			Start:  2,
			Facing: West,
			Stairs: 11,
			Units: []UnitSpec{
				{Pos: 5, Kind: KindCaptive},
				{Pos: 8, Kind: KindSludge},
			},
		},
	}
}

// LevelByName finds a built-in level.
func LevelByName(name string) (Level, bool) {
	for _, level := range Levels() {
		if level.Name == name {
			return level, true
		}
	}
	return Level{}, false
}

// GenerateLevel rolls a random corridor: warrior on the left, stairs on the
// right, a sprinkle of enemies and captives in between. The same size and
// seed always produce the same level.
func GenerateLevel(size int, seed int64) Level {
	if size < 6 {
		size = 6
	}
	rng := rand.New(rand.NewSource(seed))

	level := Level{
		Name:   "generated",
		Size:   size,
		Start:  0,
		Facing: East,
		Stairs: size - 1,
	}

	// Leave breathing room around the start and the stairs, and never stack
	// units on adjacent cells so every fight stays winnable.
	lastPlaced := -2
	for pos := 2; pos <= size-3; pos++ {
		if pos-lastPlaced < 2 {
			continue
		}
		switch roll := rng.Float64(); {
		case roll < 0.15:
			level.Units = append(level.Units, UnitSpec{Pos: pos, Kind: KindSludge})
			lastPlaced = pos
		case roll < 0.25:
			level.Units = append(level.Units, UnitSpec{Pos: pos, Kind: KindArcher})
			lastPlaced = pos
		case roll < 0.35:
			level.Units = append(level.Units, UnitSpec{Pos: pos, Kind: KindCaptive})
			lastPlaced = pos
		}
	}
	return level
}
