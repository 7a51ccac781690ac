package mood

// Static lexicon tables. Order matters wherever a slice is used: rules are
// applied in the listed order.

type phraseEmotion struct {
	phrase  string
	emotion Emotion
}

type modifier struct {
	word       string
	multiplier float64
}

var contextKeywords = map[Context][]string{
	MentalHealth: {
		"therapy", "therapist", "depression", "anxiety", "medication", "mental health", "depressed",
		"anxious", "worrying", "terrified", "can't stop worrying", "panic", "worried about",
		"psychiatrist", "psychologist", "counseling", "counselor", "antidepressants", "wellbutrin",
		"prozac", "zoloft", "lexapro", "therapy sessions", "cognitive behavioral therapy", "cbt",
		"mindfulness", "meditation", "self-care", "mental wellness", "psychological",
		"emotional support", "crisis", "suicidal", "bipolar", "adhd", "ptsd", "trauma",
		"flashbacks", "triggers",
	},
	WorkStress: {
		"work", "job", "boss", "deadline", "meeting", "office", "colleague", "overwhelmed",
		"stressed", "presentation", "deadlines", "tasks", "pressure", "promoted at work", "working",
		"hours", "overtime", "burnout", "workload", "corporate", "manager", "supervisor",
		"performance review", "laid off", "fired", "promotion", "salary", "workplace", "coworker",
		"team lead", "project", "client", "customer", "interview", "resignation", "quit",
		"employment", "career", "professional", "business",
	},
	Tiredness: {
		"tired", "exhausted", "drained", "sisyphus", "burnt out", "worn out", "fatigued", "weary",
		"feeling tired", "depleted", "empty", "running on empty", "pushing myself", "rest more",
		"need to rest", "sleep deprived", "insomnia", "can't sleep", "wake up tired", "no energy",
		"lethargic", "sluggish", "drowsy", "sleepy", "worn down", "spent", "wiped out", "beat",
		"zonked", "pooped", "bushed",
	},
	Relationships: {
		"girlfriend", "boyfriend", "partner", "relationship", "dating", "breakup", "connected",
		"love", "deeply in love", "breakup was devastating", "married", "wife", "husband", "spouse",
		"fiancé", "fiancée", "engagement", "wedding", "divorce", "separated", "single", "crush",
		"romantic", "valentine", "anniversary", "soulmate", "chemistry", "attraction", "intimacy",
		"commitment", "trust issues",
	},
	Family: {
		"mom", "dad", "family", "parents", "siblings", "children", "supportive", "leaving home",
		"leave my friends", "mother", "father", "brother", "sister", "son", "daughter",
		"grandparents", "grandmother", "grandfather", "uncle", "aunt", "cousin", "nephew", "niece",
		"family gathering", "reunion", "holidays", "childhood", "parenting", "raising kids",
		"teenager", "adolescent",
	},
	Health: {
		"sick", "illness", "doctor", "hospital", "pain", "hurt", "rest", "need to rest",
		"doctor said", "medical", "surgery", "operation", "treatment", "diagnosis", "symptoms",
		"chronic", "disease", "condition", "medicine", "prescription", "physical therapy",
		"rehabilitation", "recovery", "healing", "wellness", "fitness", "exercise", "diet",
		"nutrition", "weight", "health issues",
	},
	Achievement: {
		"graduation", "promotion", "success", "achievement", "won", "accomplished", "graduating",
		"proud", "amazing achievement", "best day ever", "promoted", "progress", "college",
		"university", "degree", "certificate", "award", "recognition", "milestone", "goal",
		"victory", "triumph", "excellence", "outstanding", "exceptional", "breakthrough",
		"accomplishment", "feat",
	},
	Social: {
		"friends", "friendship", "social", "party", "celebration", "gathering", "community",
		"support group", "lonely", "isolation", "solitude", "alone", "crowd", "people",
		"conversation", "communication", "connection", "bonding",
	},
	Financial: {
		"money", "financial", "broke", "poor", "rich", "wealthy", "salary", "income", "debt",
		"loan", "mortgage", "rent", "bills", "expenses", "budget", "savings", "investment",
		"stocks", "economy", "recession", "unemployment", "welfare",
	},
}

var emotionPatterns = map[Emotion][]string{
	Joy: {
		`\b(happy|joyful|delighted|content|glad|pleased|cheerful|blissful|elated|ecstatic)\b`,
		`\b(amazing achievement|so proud|proud of|graduated|graduating|accomplished|succeeded)\b`,
		`\b(best day|wonderful|fantastic|great news|excited about|thrilled about|overjoyed)\b`,
		`\b(love my|adore|cherish|mean everything|treasure|blessed|grateful)\b`,
		`\b(celebration|celebrating|victory|triumph|win|winning|achievement|success)\b`,
		`\b(smile|smiling|grinning|beaming|glowing|radiant|bright|sunny)\b`,
	},
	Excitement: {
		`\b(excited|thrilled|pumped|enthusiastic|can't wait|eager|anticipating)\b`,
		`\b(absolutely thrilled|so excited|really excited|super excited|extremely excited)\b`,
		`\b(best day ever|most amazing|incredible|fantastic day|amazing day)\b`,
		`\b(over the moon|walking on cloud nine|on top of the world|sky high)\b`,
		`\b(adrenaline|rush|energized|hyped|amped|electric|buzzing|vibrant)\b`,
		`\b(can't contain|bursting with|overwhelming joy|pure excitement)\b`,
	},
	Optimism: {
		`\b(hopeful|confident|optimistic|positive|looking up|bright future)\b`,
		`\b(making progress|getting better|improving|recovery|healing|progressing)\b`,
		`\b(things are looking|feeling better|has been helping|working well)\b`,
		`\b(used to be.*but.*better|therapy.*helped|treatment.*working|medication.*helping)\b`,
		`\b(light at the end|silver lining|turning around|upward trend|promising)\b`,
		`\b(faith|trust|believe|conviction|certainty|assurance|encouragement)\b`,
	},
	Sadness: {
		`\b(sad|depressed|down|heartbroken|miserable|devastated|melancholy|sorrowful)\b`,
		`\b(feeling blue|empty inside|heart.*broken|shattered|crushed|destroyed)\b`,
		`\b(crying|tears|weeping|sobbing|grief|mourning|lamenting|aching)\b`,
		`\b(lost|lonely|abandoned|rejected|hurt|betrayal|disappointed|let down)\b`,
		`\b(despair|hopeless|helpless|worthless|useless|failure|defeated)\b`,
		`\b(struggling.*therapy|worse|declining|deteriorating|failing)\b`,
	},
	Fear: {
		`\b(afraid|scared|terrified|frightened|anxious|worried|nervous|panicking)\b`,
		`\b(panic|terror|dread|apprehensive|nervous about|anxiety attack)\b`,
		`\b(can't stop worrying|worried about|anxiety|stressed about|fearful)\b`,
		`\b(nightmare|horrified|petrified|alarmed|disturbed|unsettled)\b`,
		`\b(what if|worst case|catastrophic|disaster|doom|paranoid|phobia)\b`,
		`\b(trembling|shaking|sweating|heart racing|breathless|paralyzed)\b`,
	},
	Anger: {
		`\b(angry|furious|mad|frustrated|irritated|annoyed|livid|enraged)\b`,
		`\b(rage|outraged|infuriated|pissed|upset|hostile|aggressive)\b`,
		`\b(driving me crazy|fed up|sick of|hate|despise|loathe|disgusted)\b`,
		`\b(betrayal|betrayed|let down|disappointed|cheated|deceived)\b`,
		`\b(unfair|injustice|wrong|ridiculous|absurd|outrageous|unacceptable)\b`,
		`\b(explosion|eruption|boiling|seething|fuming|raging|storming)\b`,
	},
	Stress: {
		`\b(stressed|overwhelmed|pressure|strained|tense|under pressure)\b`,
		`\b(can't cope|too much|swamped|buried|drowning in|suffocating)\b`,
		`\b(deadlines|overworked|burnt out|at my wit's end|breaking point)\b`,
		`\b(edge|limit|exhausting|demanding|intense|hectic|chaotic)\b`,
		`\b(juggling|balancing|managing|handling|dealing with|coping with)\b`,
		`\b(urgent|deadline|crunch time|time pressure|rush|hurry)\b`,
	},
	Exhaustion: {
		`\b(exhausted|drained|tired|fatigued|weary|worn out|spent|depleted)\b`,
		`\b(burnt out|running on empty|completely drained|utterly exhausted)\b`,
		`\b(sisyphus|pushing.*boulder|uphill|endless|never-ending|relentless)\b`,
		`\b(need.*rest|too tired|so tired|can't go on|at my limit)\b`,
		`\b(energy.*gone|no energy|lethargic|sluggish|zombie|dead inside)\b`,
		`\b(collapse|falling apart|breaking down|giving up|surrender)\b`,
	},
	Love: {
		`\b(love|adore|cherish|deeply in love|soulmate|beloved|darling)\b`,
		`\b(mean everything|connected|devoted|affection|attachment|bond)\b`,
		`\b(romantic|relationship|partner.*wonderful|boyfriend|girlfriend)\b`,
		`\b(heart.*full|warm feeling|tender|gentle|caring|nurturing)\b`,
		`\b(intimacy|closeness|connection|unity|together|partnership)\b`,
		`\b(supportive|understanding|accepting|loving|compassionate)\b`,
	},
	MixedPositive: {
		`\b(tired.*but.*proud|exhausted.*but.*accomplished|stressed.*but.*happy)\b`,
		`\b(nervous.*but.*ready|anxious.*but.*excited|scared.*but.*hopeful)\b`,
		`\b(sad.*but.*grateful|down.*but.*hopeful|worried.*but.*optimistic)\b`,
		`\b(bittersweet|mixed.*feelings|conflicted.*but.*positive)\b`,
	},
	MixedNegative: {
		`\b(happy.*but.*worried|excited.*but.*nervous|good.*but.*tired)\b`,
		`\b(proud.*but.*overwhelmed|accomplished.*but.*exhausted)\b`,
		`\b(hopeful.*but.*scared|optimistic.*but.*anxious)\b`,
	},
	Bittersweet: {
		`\bbittersweet\b`,
		`\b(sweet.*sorrow|happy.*sad|joy.*pain|love.*loss)\b`,
		`\b(ending.*beginning|goodbye.*hello|farewell.*welcome)\b`,
	},
	Resigned: {
		`\b(whatever|meh|don't care|gave up|giving up)\b`,
		`\b(just my luck|of course|figures|typical|why me)\b`,
		`\b(sigh|oh well|what's the point|doesn't matter)\b`,
	},
	Apathetic: {
		`\b(indifferent|apathetic|numb|empty|void|hollow)\b`,
		`\b(don't feel anything|emotionless|detached|disconnected)\b`,
		`\b(going through motions|automatic|robotic)\b`,
	},
	Neutral: {
		`\b(normal|regular|ordinary|nothing special|routine|typical|average)\b`,
		`\b(going to the store|buy groceries|daily|usual|mundane|standard)\b`,
		`\b(well.*that happened|okay|fine|alright|decent|moderate)\b`,
		`\b(factual|informational|objective|practical|logical|reasonable)\b`,
	},
	Surprise: {
		`\b(surprised|shocked|stunned|amazed|astonished|bewildered|unexpected)\b`,
		`\b(wow|whoa|omg|incredible|unbelievable|mind-blowing|jaw-dropping)\b`,
		`\b(never expected|didn't see coming|out of nowhere|suddenly)\b`,
		`\b(plot twist|revelation|discovery|breakthrough|epiphany)\b`,
	},
	Disgust: {
		`\b(disgusted|revolted|repulsed|nauseated|sickened|appalled)\b`,
		`\b(gross|nasty|horrible|terrible|awful|repugnant|vile)\b`,
		`\b(can't stand|hate|despise|abhor|detest|loathe)\b`,
	},
}

var colloquialisms = []phraseEmotion{
	{"feeling blue", Sadness},
	{"blue today", Sadness},
	{"feeling blue today", Sadness},
	{"seeing red", Anger},
	{"green with envy", Anger},
	{"tickled pink", Joy},
	{"rose-colored glasses", Optimism},
	{"over the moon", Excitement},
	{"on cloud nine", Excitement},
	{"walking on cloud nine", Excitement},
	{"on top of the world", Excitement},
	{"sky high", Excitement},
	{"seventh heaven", Joy},
	{"cloud nine", Excitement},
	{"stars in my eyes", Love},
	{"heart is broken", Sadness},
	{"broken hearted", Sadness},
	{"heart shattered", Sadness},
	{"heart in pieces", Sadness},
	{"heart sank", Sadness},
	{"stomach in knots", Fear},
	{"butterflies in stomach", Excitement},
	{"head in the clouds", Optimism},
	{"walking on air", Joy},
	{"feet on the ground", Neutral},
	{"heavy heart", Sadness},
	{"light hearted", Joy},
	{"at my wit's end", Stress},
	{"end of my rope", Stress},
	{"last straw", Anger},
	{"had it up to here", Anger},
	{"boiling point", Anger},
	{"breaking point", Stress},
	{"losing my mind", Stress},
	{"going crazy", Stress},
	{"at my limit", Exhaustion},
	{"can't take it anymore", Stress},
	{"sisyphus", Exhaustion},
	{"like sisyphus", Exhaustion},
	{"tired like sisyphus", Exhaustion},
	{"pushing a boulder", Exhaustion},
	{"uphill battle", Stress},
	{"david and goliath", Fear},
	{"achilles heel", Fear},
	{"pandora's box", Fear},
	{"drowning in", Stress},
	{"in over my head", Stress},
	{"underwater", Stress},
	{"sinking", Sadness},
	{"going under", Sadness},
	{"treading water", Stress},
	{"swimming upstream", Stress},
	{"smooth sailing", Joy},
	{"riding the wave", Excitement},
	{"under a cloud", Sadness},
	{"stormy", Anger},
	{"sunny disposition", Joy},
	{"bright outlook", Optimism},
	{"ray of sunshine", Joy},
	{"perfect storm", Stress},
	{"calm before storm", Fear},
	{"silver lining", Optimism},
	{"dark clouds", Sadness},
	{"rainbow after rain", Optimism},
	{"burning out", Exhaustion},
	{"burnt out", Exhaustion},
	{"on fire", Excitement},
	{"fired up", Excitement},
	{"hot under collar", Anger},
	{"steaming mad", Anger},
	{"cool as cucumber", Neutral},
	{"warm and fuzzy", Love},
	{"mountain to climb", Stress},
	{"peak of happiness", Joy},
	{"valley of despair", Sadness},
	{"reached summit", Joy},
	{"rock bottom", Sadness},
	{"happy as a clam", Joy},
	{"busy as a bee", Stress},
	{"free as a bird", Joy},
	{"scared as a mouse", Fear},
	{"mad as a hornet", Anger},
	{"stubborn as a mule", Anger},
	{"wise as an owl", Neutral},
	{"strong as an ox", Optimism},
	{"vibing", Joy},
	{"lit", Excitement},
	{"salty", Anger},
	{"shook", Surprise},
	{"blessed", Joy},
	{"mood", Neutral},
	{"big mood", Neutral},
	{"that hits different", Surprise},
	{"no cap", Excitement},
	{"it's giving", Neutral},
}

var negationPhrases = []phraseEmotion{
	{"not happy", Sadness},
	{"not sad", Optimism},
	{"not excited", Neutral},
	{"not angry", Neutral},
	{"not worried", Optimism},
	{"not stressed", Optimism},
	{"not tired", Optimism},
	{"not overwhelmed", Optimism},
	{"not feeling good", Sadness},
	{"not feeling well", Sadness},
	{"don't feel good", Sadness},
	{"can't be happy", Sadness},
	{"won't be okay", Sadness},
	{"never been better", Joy},
	{"couldn't be happier", Joy},
	{"nothing to worry about", Optimism},
}

var intensityModifiers = []modifier{
	{"extremely", 1.5},
	{"absolutely", 1.4},
	{"completely", 1.3},
	{"totally", 1.3},
	{"utterly", 1.4},
	{"incredibly", 1.3},
	{"amazingly", 1.2},
	{"tremendously", 1.3},
	{"immensely", 1.3},
	{"profoundly", 1.2},
	{"deeply", 1.2},
	{"really", 1.1},
	{"very", 1.1},
	{"quite", 1.05},
	{"pretty", 1.05},
	{"fairly", 1.02},
	{"slightly", 0.7},
	{"somewhat", 0.75},
	{"a bit", 0.8},
	{"a little", 0.8},
	{"kind of", 0.85},
	{"sort of", 0.85},
	{"rather", 0.9},
	{"moderately", 0.9},
	{"mildly", 0.7},
	{"barely", 0.5},
	{"hardly", 0.6},
	{"scarcely", 0.6},
	{"rarely", 0.7},
}

// negationScans detect negation words, negative contractions and absence words.
var negationScans = []string{
	`(?i)\b(not|never|no|nothing|nobody|nowhere|neither|nor|barely|hardly|scarcely|rarely)\b`,
	`(?i)\b(don't|won't|can't|shouldn't|wouldn't|couldn't|isn't|aren't|wasn't|weren't)\b`,
	`(?i)\b(without|lack|absent|missing|void|empty)\b`,
}

var temporalPatterns = []string{
	`\b(used to be|was|previously)\b.*\b(but|however|now|currently|today)\b`,
	`\b(started.*but.*now|began.*then.*now|first.*then.*now)\b`,
	`\b(initially|originally|formerly)\b.*\b(but|however|yet|now)\b`,
	`\b(past|before)\b.*\b(present|now|currently|today)\b`,
}

var complexPhrasePatterns = []string{
	`\b(therapy|treatment|medication).*\b(helping|helped|working|progress|better)\b`,
	`\b(struggling.*with|having trouble|difficulty.*with)\b`,
	`\b(making progress|getting better|improving|recovering)\b`,
	`\b(mixed feelings|bittersweet|complicated|conflicted)\b`,
}

type substitution struct {
	pattern string
	replace string
}

// surfaceSubstitutions rewrite surface signals into marker tokens. The
// all-caps rule is handled separately since it lowercases the match.
var surfaceMarkers = []substitution{
	{`!{2,}`, " VERY_INTENSE "},
	{`\?{2,}`, " CONFUSED_QUESTIONING "},
	{`\.{3,}`, " THOUGHTFUL_PAUSE "},
}

var phraseMarkers = []substitution{
	{`(?i)\b(?:feeling|feel)\s+(overwhelmed|tired|exhausted|drained|stressed|blue)\b`, "FEELING_$1"},
	{`(?i)\btired\s+like\s+sisyphus\b`, "EXHAUSTED_SISYPHUS"},
	{`(?i)\ba\s+bit\s+(overwhelmed|tired|stressed|blue|sad|happy)\b`, "SOMEWHAT_$1"},
	{`(?i)\bquite\s+(stressed|overwhelmed|tired|excited|happy|sad)\b`, "MODERATELY_$1"},
	{`(?i)\b(therapy|treatment|medication).*\b(helping|helped|working|progress|better)\b`, "POSITIVE_TREATMENT_PROGRESS"},
	{`(?i)\b(therapist says|doctor said).*\b(progress|better|improving|recovery)\b`, "MEDICAL_POSITIVE_FEEDBACK"},
}

// contractions are expanded in this order.
var contractions = []string{
	"can't", "cannot",
	"won't", "will not",
	"n't", " not",
	"'re", " are",
	"'ve", " have",
	"'ll", " will",
	"'d", " would",
	"'m", " am",
	"'s", " is",
	"gonna", "going to",
	"wanna", "want to",
	"gotta", "got to",
	"kinda", "kind of",
	"sorta", "sort of",
}

// Critical context keywords earn a bonus on top of their base weight.
var criticalKeywordBonus = map[string]float64{
	"therapy":     0.3,
	"therapist":   0.3,
	"depression":  0.3,
	"anxiety":     0.3,
	"exhausted":   0.25,
	"burnt out":   0.25,
	"overwhelmed": 0.25,
	"boss":        0.2,
	"deadline":    0.2,
	"work":        0.2,
}

var contextPhrases = map[Context][]string{
	MentalHealth: {
		`\b(struggling.*with.*therapy|therapy.*not.*working|medication.*side.*effects)\b`,
		`\b(therapist.*says|psychiatrist.*recommends|counselor.*suggested)\b`,
		`\b(panic.*attack|anxiety.*disorder|major.*depression|bipolar)\b`,
		`\b(suicidal.*thoughts|self.*harm|crisis|breakdown)\b`,
	},
	WorkStress: {
		`\b(boss.*driving.*crazy|impossible.*deadlines|toxic.*workplace)\b`,
		`\b(working.*late|overtime|60.*hour.*weeks|burnout)\b`,
		`\b(performance.*review|job.*security|laid.*off|fired)\b`,
		`\b(coworker.*drama|office.*politics|micromanager)\b`,
	},
	Tiredness: {
		`\b(running.*on.*empty|completely.*drained|physically.*exhausted)\b`,
		`\b(can't.*get.*out.*of.*bed|too.*tired.*to.*function)\b`,
		`\b(chronic.*fatigue|sleep.*deprivation|insomnia)\b`,
	},
	Relationships: {
		`\b(relationship.*problems|dating.*struggles|breakup.*devastated)\b`,
		`\b(long.*distance.*relationship|commitment.*issues|trust.*problems)\b`,
		`\b(marriage.*counseling|divorce.*proceedings|custody.*battle)\b`,
	},
}

var (
	improvementWords = []string{"better", "improved", "progress", "recovery", "healing"}
	declineWords     = []string{"worse", "declining", "deteriorating", "struggling"}
)

// negationTargets are the emotion words a generic negation can invert.
const negationTargets = `(happy|sad|excited|angry|worried|stressed|tired|overwhelmed)`

var genericNegationWords = []string{"not", "never", "no", "don't", "won't", "can't", "isn't", "aren't"}

// complexRule adds and removes emotion mass when any of its patterns match.
type complexRule struct {
	name     string
	patterns []string
	add      []EmotionScore
	reduce   []EmotionScore
}

var complexRules = []complexRule{
	{
		name:     "mixed_tired_proud",
		patterns: []string{`\b(tired|exhausted).*(but|however).*(proud|accomplished|satisfied)\b`},
		add:      []EmotionScore{{MixedPositive, 0.6}, {Exhaustion, 0.4}, {Optimism, 0.3}},
	},
	{
		name:     "mixed_sad_hopeful",
		patterns: []string{`\b(sad|down|depressed).*(but|however).*(hopeful|optimistic|better)\b`},
		add:      []EmotionScore{{MixedPositive, 0.5}, {Sadness, 0.4}, {Optimism, 0.5}},
	},
	{
		name:     "mixed_stressed_happy",
		patterns: []string{`\b(stressed|overwhelmed).*(but|however).*(enjoyed|happy|good|fun)\b`},
		add:      []EmotionScore{{MixedPositive, 0.4}, {Stress, 0.5}, {Joy, 0.3}},
	},
	{
		name:     "mixed_nervous_ready",
		patterns: []string{`\b(nervous|anxious|scared).*(but|however).*(ready|excited|prepared)\b`},
		add:      []EmotionScore{{MixedPositive, 0.5}, {Fear, 0.3}, {Excitement, 0.4}},
	},
	{
		name:     "bittersweet",
		patterns: []string{`\bbittersweet\b`, `\bmixed.*bag\b`},
		add:      []EmotionScore{{Bittersweet, 0.8}, {Joy, 0.3}, {Sadness, 0.3}},
	},
	{
		name:     "sarcastic_resignation",
		patterns: []string{`\bjust my luck\b`, `(lol|haha).*(luck|typical|figures)\b`},
		add:      []EmotionScore{{Resigned, 0.7}, {Anger, 0.3}},
	},
	{
		name:     "therapy_progress",
		patterns: []string{`\b(therapy|treatment).*\b(helping|helped|working|progress|better|improvement)\b`},
		add:      []EmotionScore{{Optimism, 0.5}, {Joy, 0.2}},
		reduce:   []EmotionScore{{Sadness, 0.6}, {Fear, 0.4}},
	},
	{
		name:     "therapy_struggle",
		patterns: []string{`\b(struggling.*with.*therapy|therapy.*not.*working|having.*trouble.*with)\b`},
		add:      []EmotionScore{{Sadness, 0.7}, {Stress, 0.5}},
		reduce:   []EmotionScore{{Optimism, 0.3}},
	},
	{
		name:     "temporal_improvement",
		patterns: []string{`\b(used to be|was).*\b(depressed|sad|anxious|stressed).*\b(but|however|now).*\b(better|improved|helping|progress)\b`},
		add:      []EmotionScore{{Optimism, 0.9}, {Joy, 0.4}},
		reduce:   []EmotionScore{{Sadness, 0.8}, {Fear, 0.6}, {Stress, 0.5}},
	},
	{
		name:     "mixed_feelings",
		patterns: []string{`\b(excited.*but.*nervous|happy.*but.*sad|love.*but.*stress|proud.*but.*overwhelmed)\b`},
		add:      []EmotionScore{{Excitement, 0.4}, {Fear, 0.4}, {Joy, 0.3}, {Stress, 0.3}},
	},
	{
		name:     "extreme_positive",
		patterns: []string{`\b(best.*day.*ever|most.*amazing|absolutely.*thrilled|incredibly.*happy)\b`},
		add:      []EmotionScore{{Excitement, 0.9}, {Joy, 0.8}},
	},
	{
		name:     "extreme_negative",
		patterns: []string{`\b(worst.*day.*ever|absolutely.*devastated|completely.*heartbroken|utterly.*exhausted)\b`},
		add:      []EmotionScore{{Sadness, 0.9}, {Exhaustion, 0.8}},
		reduce:   []EmotionScore{{Joy, 0.9}, {Excitement, 0.9}, {Optimism, 0.7}},
	},
}

// progressionRules only apply when the text carries temporal markers.
var progressionRules = []struct {
	pattern string
	emotion Emotion
	boost   float64
}{
	{`\b(getting better|making progress|improving|recovery|healing)\b`, Optimism, 0.4},
	{`\b(getting worse|deteriorating|declining|falling apart)\b`, Sadness, 0.7},
	{`\b(staying.*same|no.*change|plateau|maintaining)\b`, Neutral, 0.4},
}

// conflictGroups pit opposing emotion groups against each other.
var conflictGroups = []struct {
	left, right []Emotion
}{
	{[]Emotion{Joy, Excitement}, []Emotion{Sadness, Fear, Anger}},
	{[]Emotion{Optimism}, []Emotion{Sadness, Fear}},
	{[]Emotion{Love}, []Emotion{Anger, Disgust}},
	{[]Emotion{Exhaustion}, []Emotion{Excitement, Joy}},
}

// fallbackKeywords drive the keyword-only path when no pattern fires.
var fallbackKeywords = []struct {
	emotion  Emotion
	keywords []string
}{
	{Joy, []string{"happy", "joyful", "great", "wonderful", "amazing", "fantastic", "delighted", "pleased"}},
	{Sadness, []string{"sad", "depressed", "down", "blue", "heartbroken", "devastated", "miserable"}},
	{Excitement, []string{"excited", "thrilled", "pumped", "enthusiastic", "can't wait", "eager"}},
	{Stress, []string{"stressed", "overwhelmed", "pressure", "swamped", "buried", "tense"}},
	{Exhaustion, []string{"tired", "exhausted", "drained", "weary", "worn out", "fatigued"}},
	{Fear, []string{"scared", "afraid", "worried", "anxious", "terrified", "nervous"}},
	{Anger, []string{"angry", "mad", "frustrated", "furious", "annoyed", "irritated"}},
	{Love, []string{"love", "adore", "cherish", "devoted", "affection", "romantic"}},
	{Optimism, []string{"hopeful", "optimistic", "confident", "positive", "bright future"}},
}

// sentimentWeights map emotions onto the sentiment axis. Compound emotions
// carry no weight.
var sentimentWeights = map[Emotion]float64{
	Joy:        0.85,
	Excitement: 0.90,
	Love:       0.75,
	Optimism:   0.55,
	Surprise:   0.45,
	Sadness:    -0.80,
	Fear:       -0.70,
	Anger:      -0.60,
	Stress:     -0.65,
	Exhaustion: -0.75,
	Disgust:    -0.85,
	Neutral:    0.0,
}
