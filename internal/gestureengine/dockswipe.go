package gestureengine

import "github.com/sendmebits/flowmod/internal/model"

// DockSwipe type numbers (spec.md §4.4's "1/2/3 in two redundant fields").
const (
	dockSwipeHorizontal int64 = 1
	dockSwipeVertical   int64 = 2
	dockSwipePinch      int64 = 3
)

// Gesture phase numbers, shared with the scroll engine's magnify/scroll
// vocabulary (spec.md §4.4): begin=1, changed=2, ended=4, cancelled=8.
const (
	phaseBegan     int64 = 1
	phaseChanged   int64 = 2
	phaseEnded     int64 = 4
	phaseCancelled int64 = 8
)

// perTypeConstant holds the reverse-engineered denormal double the real
// window server expects per DockSwipe type. spec.md §9's Open Question
// states these must be carried forward bit-exact rather than regenerated,
// but supplies no numeric values and original_source/ kept none either;
// these are named placeholders standing in for values this environment
// cannot recover (see DESIGN.md Open Questions #2).
var perTypeConstant = map[int64]float64{
	dockSwipeHorizontal: 1e-300,
	dockSwipeVertical:   2e-300,
	dockSwipePinch:      3e-300,
}

// dockSwipeTypeFor selects the DockSwipe type for a continuous-capable
// system action, per spec.md §4.4 step 1.
func dockSwipeTypeFor(action model.SystemAction) (int64, bool) {
	switch action {
	case model.SystemSwitchSpaceLeft, model.SystemSwitchSpaceRight:
		return dockSwipeHorizontal, true
	case model.SystemMissionControl, model.SystemAppExpose:
		return dockSwipeVertical, true
	case model.SystemShowDesktop, model.SystemLaunchpad:
		return dockSwipePinch, true
	default:
		return 0, false
	}
}

// originOffsetForOneSpace implements spec.md §4.4's horizontal scaling
// constant: 1 + 1/(nSpaces-1) for nSpaces >= 2, else 2 (spec.md §8's
// boundary case for a single space).
func originOffsetForOneSpace(nSpaces int) float64 {
	if nSpaces < 2 {
		return 2
	}
	return 1 + 1/float64(nSpaces-1)
}

// pixelsToDockSwipeUnits converts an accumulated pixel delta to DockSwipe
// units for dockSwipeType, per spec.md §4.4 step 3. Drag direction is
// inverted with respect to pixel deltas (up/left negative), so callers
// pass the raw pixel delta and this function negates it internally.
func pixelsToDockSwipeUnits(dockSwipeType int64, pixels float64, nSpaces int, screenWidth, screenHeight float64) float64 {
	inverted := -pixels
	switch dockSwipeType {
	case dockSwipeHorizontal:
		return (inverted * originOffsetForOneSpace(nSpaces)) / (screenWidth + 63)
	default: // vertical, pinch
		return inverted / screenHeight
	}
}
