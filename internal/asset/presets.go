package asset

// BugImages are the built-in target images.
var BugImages = []string{
	"https://api.iconify.design/noto:lady-beetle.svg",
	"https://api.iconify.design/noto:honeybee.svg",
	"https://api.iconify.design/noto:butterfly.svg",
	"https://api.iconify.design/noto:ant.svg",
	"https://api.iconify.design/noto:spider.svg",
	"https://api.iconify.design/noto:beetle.svg",
	"https://api.iconify.design/noto:cricket.svg",
	"https://api.iconify.design/noto:cockroach.svg",
	"https://api.iconify.design/noto:snail.svg",
	"https://api.iconify.design/noto:mosquito.svg",
	"https://api.iconify.design/noto:worm.svg",
	"https://api.iconify.design/noto:fly.svg",
	"https://api.iconify.design/noto:scorpion.svg",
	"https://api.iconify.design/noto:microbe.svg",
}

// FruitImages are the built-in collectible images.
var FruitImages = []string{
	"https://api.iconify.design/noto:red-apple.svg",
	"https://api.iconify.design/noto:banana.svg",
	"https://api.iconify.design/noto:grapes.svg",
	"https://api.iconify.design/noto:watermelon.svg",
	"https://api.iconify.design/noto:strawberry.svg",
	"https://api.iconify.design/noto:cherries.svg",
	"https://api.iconify.design/noto:peach.svg",
	"https://api.iconify.design/noto:tangerine.svg",
	"https://api.iconify.design/noto:pineapple.svg",
	"https://api.iconify.design/noto:kiwi-fruit.svg",
	"https://api.iconify.design/noto:pear.svg",
	"https://api.iconify.design/noto:blueberries.svg",
	"https://api.iconify.design/noto:green-apple.svg",
	"https://api.iconify.design/noto:mango.svg",
	"https://api.iconify.design/noto:melon.svg",
	"https://api.iconify.design/noto:lemon.svg",
	"https://api.iconify.design/noto:coconut.svg",
	"https://api.iconify.design/noto:avocado.svg",
	"https://api.iconify.design/noto:olive.svg",
}

// fruitColors is ordered: "red-apple" must be tested before "apple"-like
// keys, and "pineapple" before "apple". Keys match URL substrings.
var fruitColors = []struct {
	key   string
	color string
}{
	{"red-apple", "#EF4444"},
	{"green-apple", "#22C55E"},
	{"pineapple", "#FDE047"},
	{"watermelon", "#EF4444"},
	{"banana", "#FCD34D"},
	{"grapes", "#8B5CF6"},
	{"strawberry", "#F43F5E"},
	{"cherries", "#991B1B"},
	{"peach", "#FDBA74"},
	{"tangerine", "#F97316"},
	{"kiwi-fruit", "#84CC16"},
	{"pear", "#BEF264"},
	{"blueberries", "#3B82F6"},
	{"mango", "#FBBF24"},
	{"melon", "#F97316"},
	{"lemon", "#FDE047"},
	{"coconut", "#A16207"},
	{"avocado", "#4D7C0F"},
	{"olive", "#6B8E23"},
}

// BackgroundPresets are the selectable backgrounds: low-saturation colours
// first, then nature textures.
var BackgroundPresets = []BackgroundSetting{
	{BackgroundColor, "#e7e5e4", "Warm Paper"},
	{BackgroundColor, "#dbeafe", "Soft Sky"},
	{BackgroundColor, "#f0fdf4", "Mint"},
	{BackgroundColor, "#fae8ff", "Lavender"},
	{BackgroundColor, "#fff7ed", "Pale Orange"},
	{BackgroundColor, "#f1f5f9", "Cool Grey"},
	{BackgroundColor, "#404040", "Dark Grey"},
	{BackgroundColor, "#1e293b", "Midnight"},
	{BackgroundColor, "#3f6212", "Moss Green"},
	{BackgroundColor, "#78350f", "Bark Brown"},

	{BackgroundImage, "https://images.unsplash.com/photo-1518173946687-a4c8892bbd9f?q=80&w=2560&auto=format&fit=crop", "Forest Floor"},
	{BackgroundImage, "https://images.unsplash.com/photo-1500382017468-9049fed747ef?q=80&w=2560&auto=format&fit=crop", "Grass Field"},
	{BackgroundImage, "https://images.unsplash.com/photo-1518837695005-2083093ee35b?q=80&w=2560&auto=format&fit=crop", "Water Surface"},
	{BackgroundImage, "https://images.unsplash.com/photo-1618520261314-1b12b50d5362?q=80&w=2560&auto=format&fit=crop", "Wood Texture"},
	{BackgroundImage, "https://images.unsplash.com/photo-1511497584788-876760111969?q=80&w=2560&auto=format&fit=crop", "Deep Forest"},
	{BackgroundImage, "https://images.unsplash.com/photo-1558591710-4b4a1ae0f04d?q=80&w=2560&auto=format&fit=crop", "Pebbles"},
}

// imageTints approximate each image preset as a flat colour for terminals.
var imageTints = map[string]string{
	"Forest Floor":  "#5b4a32",
	"Grass Field":   "#4d7c0f",
	"Water Surface": "#1e6091",
	"Wood Texture":  "#8b5a2b",
	"Deep Forest":   "#1f3d2b",
	"Pebbles":       "#8a8580",
}
