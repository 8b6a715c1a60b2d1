// Package anim is a small declarative animation engine.
//
// Trees are built from a handful of node kinds: Tween interpolates one
// scalar property, Pause waits, Pose triggers a named character pose and
// holds it, Action runs a callback once, and Sequential, Parallel and Loop
// compose other nodes. A tree is advanced once per frame with Advance and
// applies its values to a Target.
//
// Sequential never carries leftover time into the next child: a child that
// finishes mid-tick hands over on the following tick. Loop never finishes.
package anim
