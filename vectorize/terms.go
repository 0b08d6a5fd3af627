package vectorize

// domainTerms is the curated term list for the assistant's subject area:
// services, projects, pricing, and the technology the corpus talks about.
var domainTerms = []string{
	"service", "services", "project", "projects", "pricing", "price",
	"cost", "budget", "estimate", "quote", "invoice", "payment",
	"contract", "timeline", "deadline", "delivery", "milestone",
	"portfolio", "experience", "background", "skills", "expertise",
	"consulting", "development", "design", "maintenance", "support",
	"website", "web", "application", "app", "mobile", "backend",
	"frontend", "fullstack", "api", "database", "server", "hosting",
	"cloud", "deployment", "integration", "migration", "testing",
	"security", "performance", "optimization", "accessibility",
	"software", "programming", "code", "framework", "library",
	"golang", "javascript", "typescript", "python", "react", "docker",
	"kubernetes", "linux", "git", "sql", "redis", "architecture",
	"microservice", "devops", "automation", "analytics", "dashboard",
	"ecommerce", "cms", "seo", "client", "customer", "business",
	"startup", "agency", "team", "process", "workflow", "review",
	"rate", "hourly", "fixed", "retainer", "availability", "contact",
	"email", "meeting", "call", "proposal", "requirements", "scope",
}

// commonWords keeps frequent query words representable so that query
// vectors rarely collapse to zero on small-talk phrasing.
var commonWords = []string{
	"what", "when", "where", "which", "who", "why", "how", "can",
	"could", "would", "should", "do", "does", "did", "is", "are",
	"was", "were", "have", "has", "had", "will", "make", "made",
	"get", "got", "use", "used", "need", "want", "know", "help",
	"work", "works", "working", "build", "built", "create", "created",
	"offer", "offers", "provide", "provides", "take", "takes", "long",
	"much", "many", "best", "good", "better", "new", "latest",
	"current", "recent", "today", "now", "year", "time", "way",
	"thing", "things", "about", "with", "from", "your", "you",
	"there", "here", "more", "most", "some", "any", "all", "other",
	"between", "compare", "difference", "versus", "example", "guide",
	"tutorial", "learn", "start", "started", "find", "show", "tell",
	"question", "answer", "information", "detail", "details", "people",
	"please", "thanks", "hello",
}
