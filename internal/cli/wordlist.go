package cli

// wordList feeds passphrase generation. Short common words, easy to
// type and say out loud.
var wordList = []string{
	"able", "acid", "acre", "aged", "aims", "also", "amber", "apple",
	"arch", "area", "army", "atlas", "aunt", "auto", "away", "axis",
	"baker", "banjo", "barn", "basil", "beach", "beam", "bell", "bend",
	"birch", "blaze", "blue", "boat", "bold", "bolt", "bone", "book",
	"brave", "brick", "brook", "bulk", "cabin", "cable", "cairn", "calm",
	"camp", "canal", "cape", "cargo", "cedar", "chalk", "charm", "chess",
	"chief", "chord", "cider", "claim", "clay", "cliff", "cloud", "coal",
	"coast", "cobalt", "coin", "comet", "coral", "cork", "cove", "crane",
	"creek", "crisp", "crow", "cube", "curve", "dawn", "deck", "delta",
	"dense", "depth", "dome", "doze", "draft", "drift", "drum", "dune",
	"dusk", "eagle", "earth", "easel", "ebony", "echo", "edge", "elder",
	"elm", "ember", "epoch", "fable", "fern", "field", "fjord", "flame",
	"flask", "fleet", "flint", "flock", "foam", "fog", "forge", "fort",
	"fox", "frost", "gale", "gem", "glade", "glen", "globe", "gorge",
	"grain", "grape", "grove", "gulf", "gull", "harbor", "hawk", "haze",
	"heath", "hedge", "heron", "hill", "hive", "horn", "husk", "inlet",
	"iris", "iron", "isle", "ivory", "jade", "jetty", "jungle", "juno",
	"keel", "kelp", "kiln", "knoll", "lagoon", "lake", "lark", "latch",
	"ledge", "lilac", "lime", "linen", "loch", "loft", "lotus", "lunar",
	"lynx", "maple", "marsh", "mast", "meadow", "mesa", "mill", "mint",
	"mist", "moss", "moth", "newt", "niche", "north", "nutmeg", "oasis",
	"ocean", "olive", "onyx", "opal", "orbit", "orchid", "otter", "owl",
	"palm", "peak", "pearl", "pebble", "pier", "pine", "plume", "pond",
	"prairie", "prism", "quail", "quartz", "quay", "quill", "raven", "reed",
	"reef", "ridge", "river", "robin", "rook", "rose", "rune", "rust",
	"sage", "salt", "sand", "shale", "shell", "shore", "shrub", "silk",
	"slate", "sloop", "snow", "spark", "spire", "spruce", "steam", "stone",
	"storm", "swan", "tarn", "teal", "thorn", "tide", "tiger", "topaz",
	"torch", "trail", "tulip", "tundra", "twig", "umber", "vale", "vapor",
	"vine", "violet", "wave", "wharf", "wheat", "willow", "wind", "wolf",
	"woods", "wren", "yarn", "yew", "zebra", "zephyr", "zinc", "zone",
}
