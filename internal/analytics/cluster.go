package analytics

import (
	"sort"

	"github.com/dvergara/daykeeper/internal/geo"
)

// clusterRadiusMeters is the attach distance for the greedy pass: a point
// joins the first cluster with any member this close.
const clusterRadiusMeters = 100.0

// topClusters caps the reported clusters.
const topClusters = 3

// Cluster is a group of nearby completion locations. Center is the
// arithmetic mean of member latitudes and longitudes, which assumes
// city-scale spreads away from the poles and the antimeridian.
type Cluster struct {
	Center geo.Coordinate `json:"center"`
	Count  int            `json:"count"`
}

// ClusterLocations groups completion coordinates with a single greedy pass:
// each point, in insertion order, joins the first existing cluster that has
// any member within 100 meters, else starts a new singleton cluster. The
// result is the top three clusters by member count, descending, each reduced
// to its centroid. Points near the radius boundary make the grouping depend
// on insertion order; callers rely on that determinism, not on optimality.
func ClusterLocations(points []geo.Coordinate) []Cluster {
	var groups [][]geo.Coordinate
	for _, p := range points {
		placed := false
		for i := range groups {
			for _, member := range groups[i] {
				if geo.Distance(p, member) <= clusterRadiusMeters {
					groups[i] = append(groups[i], p)
					placed = true
					break
				}
			}
			if placed {
				break
			}
		}
		if !placed {
			groups = append(groups, []geo.Coordinate{p})
		}
	}

	sort.SliceStable(groups, func(i, j int) bool { return len(groups[i]) > len(groups[j]) })
	if len(groups) > topClusters {
		groups = groups[:topClusters]
	}

	out := make([]Cluster, 0, len(groups))
	for _, g := range groups {
		out = append(out, Cluster{Center: centroid(g), Count: len(g)})
	}
	return out
}

// centroid is the arithmetic mean coordinate of the members.
func centroid(members []geo.Coordinate) geo.Coordinate {
	var lat, lon float64
	for _, m := range members {
		lat += m.Lat
		lon += m.Lon
	}
	n := float64(len(members))
	return geo.Coordinate{Lat: lat / n, Lon: lon / n}
}
