package traffic

import "github.com/Sunshengjin/rmf-core/geometry"

// Profile describes the geometry a vehicle occupies while following a
// trajectory.
//
// Footprint is the physical body; a nil footprint means the vehicle has no
// physical presence. Vicinity is the larger region that other footprints
// must stay out of; a nil vicinity is normalized to equal the footprint.
type Profile struct {
	Footprint *geometry.FinalConvexShape
	Vicinity  *geometry.FinalConvexShape
}

// normalized promotes a missing vicinity to the footprint, so downstream
// code can rely on "vicinity absent" meaning "no geometry at all".
func (p Profile) normalized() Profile {
	if p.Vicinity == nil {
		p.Vicinity = p.Footprint
	}
	return p
}
