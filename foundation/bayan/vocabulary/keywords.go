package vocabulary

// Canonical keyword names
const (
	KwLet       = "let"
	KwConst     = "const"
	KwFunction  = "function"
	KwReturn    = "return"
	KwIf        = "if"
	KwElse      = "else"
	KwWhile     = "while"
	KwDo        = "do"
	KwFor       = "for"
	KwOf        = "of"
	KwSwitch    = "switch"
	KwCase      = "case"
	KwDefault   = "default"
	KwBreak     = "break"
	KwContinue  = "continue"
	KwTry       = "try"
	KwCatch     = "catch"
	KwFinally   = "finally"
	KwThrow     = "throw"
	KwClass     = "class"
	KwExtends   = "extends"
	KwNew       = "new"
	KwThis      = "this"
	KwSuper     = "super"
	KwStatic    = "static"
	KwImport    = "import"
	KwExport    = "export"
	KwFrom      = "from"
	KwTrue      = "true"
	KwFalse     = "false"
	KwNull      = "null"
	KwUndefined = "undefined"
	KwTypeof    = "typeof"
	KwFact      = "fact"
	KwRule      = "rule"
	KwQuery     = "query"
	KwNot       = "not"
	KwCut       = "cut"
	KwFindAll   = "findall"
	KwBagOf     = "bagof"
	KwSetOf     = "setof"
	KwAssert    = "assert"
	KwRetract   = "retract"
	KwIs        = "is"
)

func kw(canonical string, en []string, ar ...string) *Keyword {
	return &Keyword{
		Canonical: canonical,
		Spellings: map[Language][]string{English: en, Arabic: ar},
	}
}

func builtinKeywords() []*Keyword {
	return []*Keyword{
		kw(KwLet, []string{"let", "var"}, "متغير"),
		kw(KwConst, []string{"const"}, "ثابت"),
		kw(KwFunction, []string{"function"}, "دالة"),
		kw(KwReturn, []string{"return"}, "ارجع"),
		kw(KwIf, []string{"if"}, "إذا"),
		kw(KwElse, []string{"else"}, "وإلا"),
		kw(KwWhile, []string{"while"}, "طالما"),
		kw(KwDo, []string{"do"}, "افعل"),
		kw(KwFor, []string{"for"}, "لكل"),
		kw(KwOf, []string{"of"}, "في"),
		kw(KwSwitch, []string{"switch"}, "اختر"),
		kw(KwCase, []string{"case"}, "حالة"),
		kw(KwDefault, []string{"default"}, "افتراضي"),
		kw(KwBreak, []string{"break"}, "توقف"),
		kw(KwContinue, []string{"continue"}, "استمر"),
		kw(KwTry, []string{"try"}, "حاول"),
		kw(KwCatch, []string{"catch"}, "امسك"),
		kw(KwFinally, []string{"finally"}, "أخيرا"),
		kw(KwThrow, []string{"throw"}, "ارم"),
		kw(KwClass, []string{"class"}, "صنف"),
		kw(KwExtends, []string{"extends"}, "يرث"),
		kw(KwNew, []string{"new"}, "جديد"),
		kw(KwThis, []string{"this"}, "هذا"),
		kw(KwSuper, []string{"super"}, "الأصل"),
		kw(KwStatic, []string{"static"}, "ساكن"),
		kw(KwImport, []string{"import"}, "استورد"),
		kw(KwExport, []string{"export"}, "صدر"),
		kw(KwFrom, []string{"from"}, "من"),
		kw(KwTrue, []string{"true"}, "صحيح"),
		kw(KwFalse, []string{"false"}, "خطأ"),
		kw(KwNull, []string{"null"}, "فارغ"),
		kw(KwUndefined, []string{"undefined"}, "غير_معرف"),
		kw(KwTypeof, []string{"typeof"}, "نوع"),
		kw(KwFact, []string{"fact"}, "حقيقة"),
		kw(KwRule, []string{"rule"}, "قاعدة"),
		kw(KwQuery, []string{"query"}, "استعلام"),
		kw(KwNot, []string{"not"}, "ليس"),
		kw(KwCut, []string{"cut"}, "قطع"),
		kw(KwFindAll, []string{"findall"}, "اجمع_الكل"),
		kw(KwBagOf, []string{"bagof"}, "اجمع_حقيبة"),
		kw(KwSetOf, []string{"setof"}, "اجمع_مجموعة"),
		kw(KwAssert, []string{"assert"}, "أضف"),
		kw(KwRetract, []string{"retract"}, "احذف"),
		kw(KwIs, []string{"is"}, "يكون"),
	}
}

// builtinAliases maps Arabic native function names to their English names
var builtinAliases = map[string]string{
	"اطبع":   "print",
	"طول":    "len",
	"نص":     "str",
	"رقم":    "num",
	"مفاتيح": "keys",
	"ادفع":   "push",
}
