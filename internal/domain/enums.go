package domain

// GridSize is the number of rows and columns on the board.
const GridSize = 5

// ObjectType groups the placeable objects.
type ObjectType string

const (
	Shape  ObjectType = "shape"
	Animal ObjectType = "animal"
	Food   ObjectType = "food"
)

// Size of a placed object.
type Size string

const (
	Small  Size = "S"
	Medium Size = "M"
	Large  Size = "L"
)

// Color of a placed object.
type Color string

const (
	Red    Color = "red"
	Orange Color = "orange"
	Yellow Color = "yellow"
	Green  Color = "green"
	Blue   Color = "blue"
	Purple Color = "purple"
)

// ObjectTypes, Sizes and Colors list the allowed values in display order.
var (
	ObjectTypes = []ObjectType{Shape, Animal, Food}
	Sizes       = []Size{Small, Medium, Large}
	Colors      = []Color{Red, Orange, Yellow, Green, Blue, Purple}
)

// Emojis maps each object type to its valid names and their emoji.
var Emojis = map[ObjectType]map[string]string{
	Shape: {
		"square":   "⬜️",
		"triangle": "🔺",
		"circle":   "⭕️",
		"star":     "⭐️",
	},
	Animal: {
		"snail":    "🐌",
		"lion":     "🦁",
		"fish":     "🐟",
		"monkey":   "🐒",
		"dinosaur": "🦕",
	},
	Food: {
		"drumstick": "🍗",
		"taco":      "🌮",
		"icecream":  "🍨",
		"salad":     "🥗",
	},
}

// ValidName reports whether name belongs to the given object type.
func ValidName(t ObjectType, name string) bool {
	names, ok := Emojis[t]
	if !ok {
		return false
	}
	_, ok = names[name]
	return ok
}
