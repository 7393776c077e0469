package gcode

// Profile is a post-processor dialect for one family of CNC controllers.
type Profile struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	StartCode     []string `json:"start_code"`
	SpindleStart  string   `json:"spindle_start"` // Printf pattern taking the spindle speed
	SpindleStop   string   `json:"spindle_stop"`
	RapidMove     string   `json:"rapid_move"`
	FeedMove      string   `json:"feed_move"`
	EndCode       []string `json:"end_code"` // [SafeZ] is replaced with the retract height
	CommentPrefix string   `json:"comment_prefix"`
	CommentSuffix string   `json:"comment_suffix"`
	DecimalPlaces int      `json:"decimal_places"`
}

// Profiles lists the built-in dialects. Generic must stay last.
var Profiles = []Profile{
	{
		Name:          "Grbl",
		Description:   "Grbl on Arduino-class controller boards",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 control software",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M30"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC",
		StartCode:     []string{"G90", "G21", "G17", "G94", "G64 P0.02"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Plain RS-274 output",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// GetProfile returns the named profile, or Generic when the name is unknown.
func GetProfile(name string) Profile {
	for _, p := range Profiles {
		if p.Name == name {
			return p
		}
	}
	return Profiles[len(Profiles)-1]
}

func ProfileNames() []string {
	names := make([]string, 0, len(Profiles))
	for _, p := range Profiles {
		names = append(names, p.Name)
	}
	return names
}
