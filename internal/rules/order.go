package rules

import (
	"fmt"
	"strings"
)

// ErrCyclicDependency is returned when rules can not be ordered.
var ErrCyclicDependency = fmt.Errorf("Cyclic dependency in transform rules")

// Ordered returns All() sorted by table dependencies.
func Ordered() ([]Rule, error) {
	return Order(All())
}

// Order sorts rules topologically. A rule depends on another rule if one of
// its Inputs or After tables is the other rule's Target. Independent rules
// keep given order.
func Order(rules []Rule) ([]Rule, error) {
	producer := map[string]int{}
	for i, r := range rules {
		producer[r.Target] = i
	}

	parents := make([]map[int]bool, len(rules))
	children := make([][]int, len(rules))
	for i, r := range rules {
		parents[i] = map[int]bool{}
		deps := append(append([]string{}, r.Inputs...), r.After...)
		for _, tbl := range deps {
			p, ok := producer[tbl]
			if !ok || p == i || parents[i][p] {
				continue
			}
			parents[i][p] = true
			children[p] = append(children[p], i)
		}
	}

	var queue []int
	for i := range rules {
		if len(parents[i]) == 0 {
			queue = append(queue, i)
		}
	}

	var ordered []Rule
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		ordered = append(ordered, rules[n])

		for _, c := range children[n] {
			delete(parents[c], n)
			if len(parents[c]) == 0 {
				queue = append(queue, c)
			}
		}
	}

	if len(ordered) != len(rules) {
		var stuck []string
		for i := range rules {
			if len(parents[i]) > 0 {
				stuck = append(stuck, rules[i].Name)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(stuck, ", "))
	}

	return ordered, nil
}
