package corpus

import domcorpus "github.com/kailas-cloud/realitycheck/internal/domain/corpus"

// SeedArticles is the reference evidence corpus built at startup.
func SeedArticles() []domcorpus.Document {
	return []domcorpus.Document{
		domcorpus.NewArticle(
			"WHO COVID-19 Vaccine Safety Update",
			"World Health Organization",
			"https://www.who.int/news/vaccines",
			"COVID-19 vaccines approved by WHO have undergone rigorous testing "+
				"through clinical trials involving tens of thousands of participants. "+
				"Serious side effects are extremely rare. The benefits of vaccination "+
				"far outweigh the risks.",
		),
		domcorpus.NewArticle(
			"Climate Change: Scientific Consensus",
			"NASA",
			"https://climate.nasa.gov/scientific-consensus/",
			"Multiple studies published in peer-reviewed scientific journals show "+
				"that 97% or more of actively publishing climate scientists agree that "+
				"climate-warming trends over the past century are extremely likely due "+
				"to human activities.",
		),
		domcorpus.NewArticle(
			"5G and Health — Fact Check",
			"Reuters Fact Check",
			"https://www.reuters.com/fact-check",
			"There is no credible scientific evidence linking 5G networks to "+
				"health problems. The radio waves used by 5G are non-ionizing and "+
				"fall well within international safety guidelines set by ICNIRP.",
		),
		domcorpus.NewArticle(
			"Election Integrity Systems in the US",
			"CISA (Cybersecurity & Infrastructure Security Agency)",
			"https://www.cisa.gov/election-security",
			"The 2020 US presidential election was the most secure in American "+
				"history according to a joint statement by CISA and the Election "+
				"Infrastructure Government Coordinating Council. There is no evidence "+
				"of widespread voter fraud.",
		),
		domcorpus.NewArticle(
			"Flat Earth Claims Debunked",
			"National Geographic",
			"https://www.nationalgeographic.com",
			"The Earth is an oblate spheroid, confirmed by centuries of scientific "+
				"observation, satellite imagery, and physics. Claims that the Earth is "+
				"flat have no basis in scientific evidence.",
		),
		domcorpus.NewArticle(
			"Moon Landing Verification",
			"NASA",
			"https://www.nasa.gov/mission_pages/apollo/missions/",
			"NASA's Apollo program successfully landed humans on the Moon six "+
				"times between 1969 and 1972. This has been independently verified by "+
				"multiple countries and independent researchers using laser ranging "+
				"reflectors left on the lunar surface.",
		),
		domcorpus.NewArticle(
			"GMO Food Safety Consensus",
			"National Academies of Sciences",
			"https://www.nationalacademies.org",
			"A comprehensive review by the National Academies of Sciences found "+
				"no substantiated evidence that foods from genetically engineered "+
				"crops are less safe than foods from non-GE crops. Over 2,000 studies "+
				"have been conducted on the safety of GMO foods.",
		),
		domcorpus.NewArticle(
			"Misinformation Spreads Faster than Truth",
			"MIT Media Lab / Science Journal",
			"https://science.sciencemag.org",
			"A 2018 MIT study published in Science found that false news stories "+
				"are 70% more likely to be retweeted than true stories. Falsehoods "+
				"spread faster and reach more people than accurate information on "+
				"social media platforms.",
		),
		domcorpus.NewArticle(
			"AI-Generated Deepfakes: Identification",
			"IEEE / Digital Forensics",
			"https://www.ieee.org",
			"AI-generated deepfake videos and images can often be identified by "+
				"subtle artifacts such as inconsistent lighting, unnatural blinking "+
				"patterns, and blurred edges around facial features. Reverse image "+
				"search and metadata analysis are recommended verification methods.",
		),
		domcorpus.NewArticle(
			"Health Misinformation: Common Patterns",
			"World Health Organization",
			"https://www.who.int/health-topics/infodemic",
			"Health misinformation typically follows patterns including: appeals "+
				"to emotion over evidence, claims of conspiracy, citation of "+
				"non-peer-reviewed sources, and promotion of unproven miracle cures. "+
				"Always verify health claims with official health organizations.",
		),
	}
}
