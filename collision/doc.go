// Package collision is the narrowphase library of the traffic core.
//
// Responsibilities: support-function based convex shapes, static overlap
// tests via GJK, and continuous collision between two convex shapes
// following cubic-spline motions, using conservative advancement.
// Key types: Convex, Pose, Motion, SplineMotion, Request.
//
// The package is self-contained: it does not depend on the trajectory or
// geometry layers. Those layers hand it support functions and motions.
package collision
