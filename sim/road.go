package sim

import (
	"fmt"
	"sort"
)

// densityKernel is the symmetric 5-tap smoothing applied to the occupancy
// vector, centered on the middle tap.
var densityKernel = [5]float64{0.25, 0.5, 1, 0.5, 0.25}

// densityMargin is the number of cells at each end of the road the kernel is
// never centered on. Those density entries stay at zero.
const densityMargin = len(densityKernel) / 2

// Car is a single vehicle. Cars have no identity beyond their slot in the
// position-sorted sequence held by RoadState.
type Car struct {
	Position int `json:"position"`
	Velocity int `json:"velocity"`
}

// RoadState holds the circular road, its cars sorted by ascending position,
// and the simulation clock.
type RoadState struct {
	Length int
	Cars   []Car
	Time   float64
}

// NewRoadState creates a RoadState holding a sorted copy of cars.
func NewRoadState(length int, cars []Car) *RoadState {
	r := &RoadState{
		Length: length,
		Cars:   append([]Car(nil), cars...),
	}
	r.sortCars()
	return r
}

// sortCars restores ascending-position order. The sort is stable so cars that
// share a cell keep their relative order.
func (r *RoadState) sortCars() {
	sort.SliceStable(r.Cars, func(i, j int) bool {
		return r.Cars[i].Position < r.Cars[j].Position
	})
}

// successor returns the slot of the car ahead of slot i; the last slot wraps
// to slot 0.
func (r *RoadState) successor(i int) int {
	if i == len(r.Cars)-1 {
		return 0
	}
	return i + 1
}

// Occupancy returns a vector of length L with a 1 at every occupied cell.
// A cell shared by two cars still reads 1.
func (r *RoadState) Occupancy() []int {
	occ := make([]int, r.Length)
	for _, car := range r.Cars {
		occ[car.Position] = 1
	}
	return occ
}

// Density returns the occupancy smoothed by densityKernel. Entries 0, 1, L-2
// and L-1 are always zero, as is the whole vector when L < 5.
func (r *RoadState) Density() []float64 {
	occ := r.Occupancy()
	density := make([]float64, r.Length)
	for k := densityMargin; k < r.Length-densityMargin; k++ {
		var sum float64
		for j, w := range densityKernel {
			sum += w * float64(occ[k+j-densityMargin])
		}
		density[k] = sum
	}
	return density
}

// MeanVelocity returns the average velocity of the cars, or 0 for an empty road.
func (r *RoadState) MeanVelocity() float64 {
	if len(r.Cars) == 0 {
		return 0
	}
	total := 0
	for _, car := range r.Cars {
		total += car.Velocity
	}
	return float64(total) / float64(len(r.Cars))
}

// placeCars lays out n cars on the odd cells 1, 3, 5, ... When the road is
// more than half full the remaining cars take the even cells 0, 2, 4, ... in
// order. Velocities come from velocity, capped at vmax. The result is sorted.
func placeCars(length, n, vmax int, velocity func() int) ([]Car, error) {
	if n > length {
		return nil, fmt.Errorf("placing %d cars on %d cells", n, length)
	}
	cars := make([]Car, 0, n)
	for pos := 1; pos < length && len(cars) < n; pos += 2 {
		cars = append(cars, Car{Position: pos})
	}
	for pos := 0; pos < length && len(cars) < n; pos += 2 {
		cars = append(cars, Car{Position: pos})
	}
	for i := range cars {
		cars[i].Velocity = min(velocity(), vmax)
	}
	sort.SliceStable(cars, func(i, j int) bool {
		return cars[i].Position < cars[j].Position
	})
	return cars, nil
}
