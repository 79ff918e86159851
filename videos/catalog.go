package videos

// Entry is a curated video in the recommendation catalog.
type Entry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Channel     string   `json:"channel"`
	Thumbnail   string   `json:"thumbnail"`
	Duration    string   `json:"duration"`
	Views       string   `json:"views"`
	Likes       string   `json:"likes"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	Difficulty  string   `json:"difficulty"`
	Chapter     string   `json:"chapter"`
}

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Catalog returns a fresh copy of the built-in catalog.
func Catalog() []Entry {
	out := make([]Entry, len(catalog))
	for i, e := range catalog {
		e.Tags = append([]string(nil), e.Tags...)
		out[i] = e
	}
	return out
}

var catalog = []Entry{
	{
		ID:          "physics_fundamentals_1",
		Title:       "Physics Fundamentals: Motion and Forces",
		Channel:     "Khan Academy",
		Thumbnail:   "https://img.youtube.com/vi/ZM8ECpBuQYE/maxresdefault.jpg",
		Duration:    "15:30",
		Views:       "2.5M",
		Likes:       "125K",
		Description: "Understanding the basic concepts of motion, velocity, acceleration and Newton's laws of motion.",
		URL:         "https://youtube.com/watch?v=ZM8ECpBuQYE",
		Tags:        []string{"motion", "force", "velocity", "acceleration", "newton", "laws"},
		Difficulty:  DifficultyBeginner,
		Chapter:     "mechanics",
	},
	{
		ID:          "work_energy_power",
		Title:       "Work, Energy and Power - Complete Chapter",
		Channel:     "Physics Wallah",
		Thumbnail:   "https://img.youtube.com/vi/w4QFJb9a8vo/maxresdefault.jpg",
		Duration:    "45:20",
		Views:       "1.8M",
		Likes:       "98K",
		Description: "Comprehensive explanation of work-energy theorem, kinetic and potential energy.",
		URL:         "https://youtube.com/watch?v=w4QFJb9a8vo",
		Tags:        []string{"energy", "work", "power", "mechanics", "kinetic", "potential"},
		Difficulty:  DifficultyIntermediate,
		Chapter:     "mechanics",
	},
	{
		ID:          "gravitation_orbital",
		Title:       "Gravitation and Orbital Motion",
		Channel:     "Unacademy Physics",
		Thumbnail:   "https://img.youtube.com/vi/7i808check8/maxresdefault.jpg",
		Duration:    "28:45",
		Views:       "890K",
		Likes:       "45K",
		Description: "Newton's law of universal gravitation, gravitational field, and satellite motion.",
		URL:         "https://youtube.com/watch?v=7i808check8",
		Tags:        []string{"gravity", "motion", "force", "mechanics", "orbital", "satellite"},
		Difficulty:  DifficultyIntermediate,
		Chapter:     "gravitation",
	},
	{
		ID:          "oscillations_shm",
		Title:       "Oscillations and Simple Harmonic Motion",
		Channel:     "Vedantu Physics",
		Thumbnail:   "https://img.youtube.com/vi/O-QqC52kquk/maxresdefault.jpg",
		Duration:    "35:15",
		Views:       "1.2M",
		Likes:       "67K",
		Description: "Understanding SHM, pendulum motion, and wave concepts in physics.",
		URL:         "https://youtube.com/watch?v=O-QqC52kquk",
		Tags:        []string{"oscillations", "waves", "motion", "mechanics", "pendulum", "frequency"},
		Difficulty:  DifficultyIntermediate,
		Chapter:     "waves",
	},
	{
		ID:          "thermodynamics_laws",
		Title:       "Thermodynamics Laws and Applications",
		Channel:     "BYJU'S Physics",
		Thumbnail:   "https://img.youtube.com/vi/GiAj9WL4itE/maxresdefault.jpg",
		Duration:    "52:10",
		Views:       "1.5M",
		Likes:       "78K",
		Description: "First and second law of thermodynamics with real-world applications.",
		URL:         "https://youtube.com/watch?v=GiAj9WL4itE",
		Tags:        []string{"thermodynamics", "energy", "heat", "temperature", "entropy", "laws"},
		Difficulty:  DifficultyAdvanced,
		Chapter:     "thermodynamics",
	},
	{
		ID:          "waves_sound",
		Title:       "Waves and Sound Physics",
		Channel:     "Physics Galaxy",
		Thumbnail:   "https://img.youtube.com/vi/qNf96Tslhz0/maxresdefault.jpg",
		Duration:    "40:30",
		Views:       "750K",
		Likes:       "42K",
		Description: "Wave properties, sound waves, Doppler effect, and wave interference.",
		URL:         "https://youtube.com/watch?v=qNf96Tslhz0",
		Tags:        []string{"waves", "sound", "oscillations", "frequency", "amplitude", "doppler"},
		Difficulty:  DifficultyIntermediate,
		Chapter:     "waves",
	},
	{
		ID:          "electromagnetic_waves",
		Title:       "Electromagnetic Waves and Light",
		Channel:     "Physics Concepts",
		Thumbnail:   "https://img.youtube.com/vi/lwfJPc-rSXw/maxresdefault.jpg",
		Duration:    "38:20",
		Views:       "680K",
		Likes:       "39K",
		Description: "Understanding electromagnetic spectrum, light properties, and wave-particle duality.",
		URL:         "https://youtube.com/watch?v=lwfJPc-rSXw",
		Tags:        []string{"electromagnetic", "light", "waves", "optics", "spectrum", "photon"},
		Difficulty:  DifficultyAdvanced,
		Chapter:     "optics",
	},
	{
		ID:          "units_measurements",
		Title:       "Units and Measurements - Physics Basics",
		Channel:     "Khan Academy Physics",
		Thumbnail:   "https://img.youtube.com/vi/s-4b3kwofEs/maxresdefault.jpg",
		Duration:    "22:15",
		Views:       "1.1M",
		Likes:       "55K",
		Description: "SI units, dimensional analysis, and measurement techniques in physics.",
		URL:         "https://youtube.com/watch?v=s-4b3kwofEs",
		Tags:        []string{"measurements", "units", "physics", "dimensions", "analysis", "scale"},
		Difficulty:  DifficultyBeginner,
		Chapter:     "fundamentals",
	},
	{
		ID:          "vectors_scalars",
		Title:       "Vectors and Scalars - Complete Guide",
		Channel:     "Professor Dave Explains",
		Thumbnail:   "https://img.youtube.com/vi/ml4NSzCQobk/maxresdefault.jpg",
		Duration:    "25:40",
		Views:       "920K",
		Likes:       "48K",
		Description: "Understanding vector quantities, scalar quantities, and vector operations.",
		URL:         "https://youtube.com/watch?v=ml4NSzCQobk",
		Tags:        []string{"vectors", "scalars", "mathematics", "physics", "direction", "magnitude"},
		Difficulty:  DifficultyBeginner,
		Chapter:     "mathematics",
	},
	{
		ID:          "circular_motion",
		Title:       "Circular Motion and Centripetal Force",
		Channel:     "Michel van Biezen",
		Thumbnail:   "https://img.youtube.com/vi/bpFK2VCRHUs/maxresdefault.jpg",
		Duration:    "33:25",
		Views:       "560K",
		Likes:       "34K",
		Description: "Uniform circular motion, centripetal acceleration, and real-world applications.",
		URL:         "https://youtube.com/watch?v=bpFK2VCRHUs",
		Tags:        []string{"circular", "motion", "centripetal", "acceleration", "rotation", "angular"},
		Difficulty:  DifficultyIntermediate,
		Chapter:     "mechanics",
	},
}
