package classify

// Built-in keyword tables for the forex news channel (English + Arabic).
// These mirror the production lists; configs can override any of them.

var defaultHigh = []string{
	// Central banks & rates
	"rate decision", "interest rate", "fomc", "fed", "powell", "ecb", "boe", "boj",
	"قرار الفائدة", "سعر الفائدة", "الفيدرالي", "باول", "المركزي الأوروبي", "بنك إنجلترا", "بنك اليابان",
	// Major data
	"cpi", "inflation", "nfp", "jobs report", "unemployment", "gdp", "pmi",
	"التضخم", "مؤشر أسعار المستهلك", "الوظائف", "البطالة", "الناتج المحلي", "مديري المشتريات",
	// Risk / shocks
	"breaking", "urgent", "intervention", "sanction", "war",
	"عاجل", "تحذير", "تدخل", "عقوبات", "حرب",
}

var defaultMedium = []string{
	"retail sales", "ppi", "consumer confidence", "housing", "minutes", "speech",
	"مبيعات التجزئة", "أسعار المنتجين", "ثقة المستهلك", "الإسكان", "محضر", "خطاب", "تصريحات",
	"gold", "xau", "oil", "brent", "wti",
	"الذهب", "النفط",
	"usd", "eur", "gbp", "jpy", "chf", "cad", "aud", "nzd",
	"الدولار", "اليورو", "الإسترليني", "الين",
}

var defaultPositive = []string{
	"يرتفع", "ارتفاع", "يصعد", "صعود", "مكاسب", "إيجابي", "قوي", "يتحسن", "قفز", "زيادة",
	"rise", "up", "gains", "bullish", "beats", "strong",
}

var defaultNegative = []string{
	"ينخفض", "انخفاض", "يهبط", "هبوط", "خسائر", "سلبي", "ضعيف", "يتراجع", "هبوط حاد", "تراجع",
	"fall", "down", "losses", "bearish", "misses", "weak",
}
