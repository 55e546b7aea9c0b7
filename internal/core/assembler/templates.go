package assembler

import "github.com/nightconcept/cratesmith/internal/core/project"

// MainTemplate is the entry point of an executable crate.
const MainTemplate = `fn main() {
    println!("Hello, world!");
}
`

// LibTemplate is the entry point of a library crate.
const LibTemplate = `pub fn add(left: usize, right: usize) -> usize {
    left + right
}

#[cfg(test)]
mod tests {
    use super::*;

    #[test]
    fn it_works() {
        let result = add(2, 2);
        assert_eq!(result, 4);
    }
}
`

// EntryPointSource returns the boilerplate for the target kind.
func EntryPointSource(kind project.TargetKind) string {
	if kind == project.Library {
		return LibTemplate
	}
	return MainTemplate
}
