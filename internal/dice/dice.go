// Package dice parses and rolls standard dice notation (NdM, NdM+K, NdM-K).
package dice

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxDice  = 100
	maxSides = 1000
)

var notation = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

type Roll struct {
	Notation string `json:"notation"`
	Rolls    []int  `json:"rolls"`
	Modifier int    `json:"modifier"`
	Total    int    `json:"total"`
}

// Parse validates dice notation and returns count, sides and modifier.
func Parse(input string) (count, sides, modifier int, err error) {
	m := notation.FindStringSubmatch(strings.ToLower(strings.TrimSpace(input)))
	if m == nil {
		return 0, 0, 0, fmt.Errorf("invalid dice notation: %q", input)
	}

	count = 1
	if m[1] != "" {
		count, err = strconv.Atoi(m[1])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid dice count: %q", m[1])
		}
	}
	sides, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid dice sides: %q", m[2])
	}
	if m[3] != "" {
		modifier, err = strconv.Atoi(m[3])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid modifier: %q", m[3])
		}
	}

	if count < 1 || count > maxDice {
		return 0, 0, 0, fmt.Errorf("dice count must be between 1 and %d", maxDice)
	}
	if sides < 2 || sides > maxSides {
		return 0, 0, 0, fmt.Errorf("dice sides must be between 2 and %d", maxSides)
	}
	return count, sides, modifier, nil
}

// New rolls the given notation.
func New(input string) (*Roll, error) {
	count, sides, modifier, err := Parse(input)
	if err != nil {
		return nil, err
	}

	r := &Roll{
		Notation: strings.ToLower(strings.TrimSpace(input)),
		Modifier: modifier,
		Total:    modifier,
	}
	for i := 0; i < count; i++ {
		die := rand.Intn(sides) + 1
		r.Rolls = append(r.Rolls, die)
		r.Total += die
	}
	return r, nil
}
