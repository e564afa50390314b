package config

// DefaultAllowedHosts are the domains whose hosts (and subdomains) may be crawled.
var DefaultAllowedHosts = []string{
	"ics.uci.edu",
	"cs.uci.edu",
	"informatics.uci.edu",
	"stat.uci.edu",
}

// DefaultRejectedExtensions lists path suffixes that never point at HTML pages.
var DefaultRejectedExtensions = []string{
	"css", "js", "bmp", "gif", "jpg", "jpeg", "ico", "png", "tif", "tiff", "mid", "mp2", "mp3", "mp4",
	"wav", "avi", "mov", "mpeg", "ram", "m4v", "mkv", "ogg", "ogv", "pdf", "ps", "eps", "tex", "ppt",
	"pptx", "doc", "docx", "xls", "xlsx", "names", "data", "dat", "exe", "bz2", "tar", "msi", "bin",
	"7z", "psd", "dmg", "iso", "epub", "dll", "cnf", "tgz", "sha1", "thmx", "mso", "arff", "rtf", "jar",
	"csv", "rm", "smil", "wmv", "swf", "wma", "zip", "rar", "gz",
}

// DefaultKeywords feed the text_density quality strategy.
var DefaultKeywords = []string{
	"research", "university", "student", "students", "faculty", "professor", "course", "courses",
	"computer", "science", "informatics", "statistics", "department", "information", "project",
	"publication", "publications", "data", "learning", "software",
}

// DefaultStopwords are excluded from word frequency statistics.
var DefaultStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are",
	"aren't", "as", "at", "be", "because", "been", "before", "being", "below", "between", "both",
	"but", "by", "can't", "cannot", "could", "couldn't", "did", "didn't", "do", "does", "doesn't",
	"doing", "don't", "down", "during", "each", "few", "for", "from", "further", "had", "hadn't",
	"has", "hasn't", "have", "haven't", "having", "he", "he'd", "he'll", "he's", "her", "here",
	"here's", "hers", "herself", "him", "himself", "his", "how", "how's", "i", "i'd", "i'll", "i'm",
	"i've", "if", "in", "into", "is", "isn't", "it", "it's", "its", "itself", "let's", "me", "more",
	"most", "mustn't", "my", "myself", "no", "nor", "not", "of", "off", "on", "once", "only", "or",
	"other", "ought", "our", "ours", "ourselves", "out", "over", "own", "same", "shan't", "she",
	"she'd", "she'll", "she's", "should", "shouldn't", "so", "some", "such", "than", "that", "that's",
	"the", "their", "theirs", "them", "themselves", "then", "there", "there's", "these", "they",
	"they'd", "they'll", "they're", "they've", "this", "those", "through", "to", "too", "under",
	"until", "up", "very", "was", "wasn't", "we", "we'd", "we'll", "we're", "we've", "were",
	"weren't", "what", "what's", "when", "when's", "where", "where's", "which", "while", "who",
	"who's", "whom", "why", "why's", "with", "won't", "would", "wouldn't", "you", "you'd", "you'll",
	"you're", "you've", "your", "yours", "yourself", "yourselves",
}
