package highlight

// Static identifier tables for the Python and MEL rule sets. These are pure
// data; the scanning logic lives in python.go and mel.go.

var pythonControlKeywords = []string{
	"and", "as", "assert", "async", "await", "break", "class", "continue",
	"def", "del", "elif", "else", "except", "finally", "for", "global",
	"if", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise",
	"return", "try", "while", "with", "yield",
}

var pythonImportKeywords = []string{"import", "from"}

var pythonConstants = []string{"True", "False", "None", "NotImplemented", "Ellipsis"}

var pythonBuiltins = []string{
	// Types
	"bool", "bytearray", "bytes", "complex", "dict", "float", "frozenset",
	"int", "list", "memoryview", "object", "set", "slice", "str", "tuple",
	"type",
	// Functions
	"abs", "all", "any", "ascii", "bin", "breakpoint", "callable", "chr",
	"classmethod", "compile", "delattr", "dir", "divmod", "enumerate",
	"eval", "exec", "filter", "format", "getattr", "globals", "hasattr",
	"hash", "help", "hex", "id", "input", "isinstance", "issubclass",
	"iter", "len", "locals", "map", "max", "min", "next", "oct", "open",
	"ord", "pow", "print", "property", "range", "repr", "reversed",
	"round", "setattr", "sorted", "staticmethod", "sum", "super", "vars",
	"zip", "__import__",
}

// Maya- and Qt-side identifiers that scripts written for the Maya script
// editor reach for constantly; they get their own style so framework calls
// stand out from plain identifiers.
var pythonFrameworkNames = []string{
	"cmds", "mel", "maya", "pymel", "pm", "OpenMaya", "OpenMayaUI",
	"MFnMesh", "MFnTransform", "MSelectionList", "MGlobal", "MDagPath",
	"QtWidgets", "QtCore", "QtGui", "Signal", "Slot",
	"QWidget", "QMainWindow", "QDialog", "QVBoxLayout", "QHBoxLayout",
	"QPushButton", "QLabel", "QLineEdit", "QTextEdit", "QAction",
}

var pythonExceptions = []string{
	"ArithmeticError", "AssertionError", "AttributeError", "BaseException",
	"BlockingIOError", "BufferError", "ChildProcessError",
	"ConnectionError", "EOFError", "Exception", "FileExistsError",
	"FileNotFoundError", "FloatingPointError", "GeneratorExit",
	"ImportError", "IndentationError", "IndexError", "InterruptedError",
	"IsADirectoryError", "KeyError", "KeyboardInterrupt", "LookupError",
	"MemoryError", "ModuleNotFoundError", "NameError", "NotADirectoryError",
	"NotImplementedError", "OSError", "OverflowError", "PermissionError",
	"RecursionError", "ReferenceError", "RuntimeError", "StopAsyncIteration",
	"StopIteration", "SyntaxError", "SystemError", "SystemExit", "TabError",
	"TimeoutError", "TypeError", "UnboundLocalError", "UnicodeDecodeError",
	"UnicodeEncodeError", "UnicodeError", "ValueError", "ZeroDivisionError",
	"DeprecationWarning", "RuntimeWarning", "UserWarning", "Warning",
}

var pythonIdentityNames = []string{"self", "cls"}

var pythonTypeHintNames = []string{
	"Any", "Callable", "ClassVar", "Dict", "Final", "FrozenSet", "Iterable",
	"Iterator", "List", "Literal", "Mapping", "Optional", "Protocol",
	"Sequence", "Set", "Tuple", "Type", "TypedDict", "Union",
}

var melKeywords = []string{
	"break", "case", "continue", "default", "do", "else", "false", "float",
	"for", "global", "if", "in", "int", "matrix", "off", "on", "proc",
	"return", "source", "string", "switch", "true", "vector", "while",
	"yes", "no",
}

// A sampling of the MEL commands scripts use most; the full command set is
// in the thousands and is not worth shipping as data.
var melCommands = []string{
	"about", "attributeExists", "button", "catch", "circle", "columnLayout",
	"confirmDialog", "connectAttr", "createNode", "delete", "deleteUI",
	"duplicate", "error", "eval", "exists", "fileDialog2", "filetest",
	"floatField", "formLayout", "getAttr", "group", "hide", "instance",
	"intField", "joint", "keyframe", "listAttr", "listConnections",
	"listRelatives", "ls", "makeIdentity", "move", "objExists", "parent",
	"playbackOptions", "polyCube", "polyCylinder", "polyPlane", "polySphere",
	"print", "progressBar", "rename", "rotate", "rowLayout", "scale",
	"select", "setAttr", "setKeyframe", "shelfButton", "showWindow", "size",
	"sphere", "spaceLocator", "stringArrayContains", "substitute", "text",
	"textField", "tokenize", "trace", "warning", "window", "xform",
}
