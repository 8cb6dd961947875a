package bboxlabel

import (
	"fmt"
	"math/rand"
	"time"
)

// Split randomly splits the images of the project into multiple projects with the same class
// list. The annotations are deep copies.
//
// The cumulativeSplits specify the cumulative distribution according to which the images are split
// into the returned projects. Its values must be non-decreasing and end at 100. A nil rng uses a
// time-seeded source.
func (p *Project) Split(cumulativeSplits []int, rng *rand.Rand) ([]*Project, error) {
	if len(cumulativeSplits) == 0 {
		return nil, fmt.Errorf("no split percentages given")
	}

	datasets := make([]*Project, len(cumulativeSplits))
	var sum int
	for i, s := range cumulativeSplits {
		if s < sum {
			return nil, fmt.Errorf("the split percentages are not cumulative")
		}

		// Allocate slightly more than the expected size for each dataset.
		percent := s - sum
		sum = s
		d := *p
		d.Path = "" // Subsets are saved to files of their own.
		d.Classes = append([]string{}, p.Classes...)
		d.Annotations = make([]*ImageAnnotation, 0, int(1.05*float64(percent)/100*float64(len(p.Annotations))))
		datasets[i] = &d
	}
	if sum != 100 {
		return nil, fmt.Errorf("the split percentages do not add up to 100")
	}

	// Split the data.
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	annotations := p.Clone().Annotations

outer:
	for _, a := range annotations {
		r := rng.Intn(100)
		for i, s := range cumulativeSplits {
			if r < s {
				datasets[i].Annotations = append(datasets[i].Annotations, a)
				continue outer
			}
		}
	}

	return datasets, nil
}
