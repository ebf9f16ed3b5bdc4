package game

import "github.com/ewilliams-labs/earworm/internal/core/domain"

const basePoints = 2000

// PointsForGuess returns the points for solving on attempt k (0-indexed).
// The result is not clamped and goes negative for large k.
func PointsForGuess(mode domain.GuessMode, k int) int {
	switch mode {
	case domain.ModeYear:
		return basePoints - 50*k
	case domain.ModeAlbum:
		return basePoints - 100*k
	default:
		return basePoints - 200*k
	}
}
