// Package catplist decodes Apple property lists, including NSKeyedArchiver object graphs,
// into a normalized value tree for display, diffing or further processing.
//
// Decoding happens in two steps. [Parse] turns plist bytes into a [Primitive] tree: the
// values exactly as stored, with archive references still pointing into the object
// table. [DecodePlist] then unwraps the primitive tree into a [Value] tree: references
// are resolved, Foundation encodings such as NSString, NSDate, NSData, NSDictionary and
// NSArray are collapsed into plain values, and byte strings are inspected for nested
// payloads (embedded plists, xz compressed data, packed UUID arrays).
//
// Decoding is best effort. A subtree that can not be decoded is replaced by a value of
// kind [KindDecodeError] and decoding continues with its siblings.
//
// A [Value] implements [bind.Source], so a decoded archive can be unmarshalled onto Go
// types:
//
//	file, err := catplist.Open("Info.plist")
//	if err != nil {
//	    return err
//	}
//
//	var info struct {
//	    Name    string `plist:"CFBundleName"`
//	    Version string `plist:"CFBundleShortVersionString"`
//	}
//
//	err = bind.Unmarshal(file.Value, &info)
package catplist
