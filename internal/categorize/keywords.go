package categorize

// categoryKeywords is consulted in order; ties on hit count go to the
// category listed first.
var categoryKeywords = []struct {
	Name     string
	Keywords []string
}{
	{"Food & Dining", []string{
		"restaurant", "cafe", "diner", "bistro", "grill", "steakhouse", "pizzeria",
		"sushi", "thai", "chinese", "mexican", "italian", "burger", "mcdonald",
		"wendy", "taco bell", "kfc", "subway", "starbucks", "dunkin", "coffee",
	}},
	{"Groceries", []string{
		"grocery", "supermarket", "market", "food", "produce", "kroger", "safeway",
		"walmart", "target", "costco", "sam's club", "trader joe", "whole foods",
		"aldi", "publix", "wegmans", "milk", "bread", "eggs", "meat", "vegetable",
	}},
	{"Transportation", []string{
		"gas", "fuel", "petrol", "shell", "exxon", "chevron", "bp", "uber", "lyft",
		"taxi", "cab", "transit", "subway", "metro", "bus", "train", "parking",
		"toll", "car wash", "auto", "vehicle",
	}},
	{"Utilities", []string{
		"electric", "water", "gas", "utility", "power", "energy", "sewage", "waste",
		"garbage", "internet", "wifi", "broadband", "cable", "tv", "phone", "mobile",
		"cell", "verizon", "at&t", "t-mobile", "sprint", "comcast", "xfinity",
	}},
	{"Housing", []string{
		"rent", "mortgage", "lease", "apartment", "condo", "house", "home", "property",
		"real estate", "hoa", "maintenance", "repair", "furniture", "decor", "ikea",
		"home depot", "lowe's", "bed bath", "wayfair",
	}},
	{"Entertainment", []string{
		"movie", "theater", "cinema", "concert", "show", "ticket", "netflix", "hulu",
		"disney+", "spotify", "apple music", "amazon prime", "game", "playstation",
		"xbox", "nintendo", "steam", "book", "kindle", "audible",
	}},
	{"Shopping", []string{
		"amazon", "ebay", "etsy", "walmart", "target", "best buy", "apple", "microsoft",
		"clothing", "apparel", "fashion", "shoes", "accessory", "jewelry", "watch",
		"electronics", "gadget", "device",
	}},
	{"Personal Care", []string{
		"salon", "spa", "hair", "nail", "barber", "beauty", "cosmetic", "makeup",
		"skincare", "pharmacy", "cvs", "walgreens", "rite aid", "soap", "shampoo",
		"toothpaste", "deodorant",
	}},
	{"Health & Medical", []string{
		"doctor", "physician", "hospital", "clinic", "medical", "health", "dental",
		"dentist", "vision", "eye", "optometrist", "prescription", "medicine", "drug",
		"therapy", "counseling", "insurance",
	}},
	{"Education", []string{
		"school", "college", "university", "tuition", "education", "course", "class",
		"training", "workshop", "seminar", "book", "textbook", "supplies", "student",
		"loan", "scholarship",
	}},
	{"Bills & Payments", []string{
		"bill", "payment", "fee", "subscription", "membership", "due", "invoice",
		"statement", "account", "service", "charge", "credit card", "loan", "debt",
	}},
}

var (
	incomeWords  = []string{"salary", "deposit", "payroll", "income", "direct deposit"}
	billWords    = []string{"bill", "payment", "monthly", "subscription"}
	utilityWords = []string{"electric", "water", "gas", "power", "energy"}
	housingWords = []string{"rent", "mortgage", "lease", "hoa"}
)
