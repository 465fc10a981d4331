package presets

// ConfusingBrowserGlobals lists browser globals that are easy to use by
// accident in place of a local variable. The variables group restricts them
// through no-restricted-globals.
var ConfusingBrowserGlobals = []string{
	"addEventListener",
	"blur",
	"close",
	"closed",
	"confirm",
	"defaultStatus",
	"defaultstatus",
	"event",
	"external",
	"find",
	"focus",
	"frameElement",
	"frames",
	"history",
	"innerHeight",
	"innerWidth",
	"length",
	"location",
	"locationbar",
	"menubar",
	"moveBy",
	"moveTo",
	"name",
	"onblur",
	"onerror",
	"onfocus",
	"onload",
	"onresize",
	"onunload",
	"open",
	"opener",
	"opera",
	"outerHeight",
	"outerWidth",
	"pageXOffset",
	"pageYOffset",
	"parent",
	"print",
	"removeEventListener",
	"resizeBy",
	"resizeTo",
	"screen",
	"screenLeft",
	"screenTop",
	"screenX",
	"screenY",
	"scroll",
	"scrollbars",
	"scrollBy",
	"scrollTo",
	"scrollX",
	"scrollY",
	"self",
	"status",
	"statusbar",
	"stop",
	"toolbar",
	"top",
}
